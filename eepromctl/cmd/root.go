// Package cmd provides the command-line interface of eepromctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var cfg = DefaultConfig()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "eepromctl",
	Short: "eepromctl reads and writes serial EEPROMs on a two-wire bus.",
	Long: `eepromctl reads and writes serial EEPROMs with two-byte ` +
		`addressing (M24C32 to M24512) on a Linux i2c-dev bus or on a ` +
		`simulated bus. Flags can also be set with EEPROM_* environment ` +
		`variables, optionally loaded from a dotenv file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return cfg.Load(cmd.Flags())
	},
}

func init() {
	cfg.BindFlags(rootCmd.PersistentFlags())
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It runs the exit hooks before the program ends.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
