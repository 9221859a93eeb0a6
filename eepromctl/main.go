// Command eepromctl reads and writes serial EEPROMs.
package main

import "github.com/sarchlab/eeprom/eepromctl/cmd"

func main() {
	cmd.Execute()
}
