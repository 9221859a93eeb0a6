package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/eeprom/eeprom"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Check whether the device answers on the bus.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession(cfg)
		if err != nil {
			return err
		}

		if err := detect(s); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s at 0x%02x\n", cfg.Model, cfg.Address)

		return nil
	},
}

func detect(s *session) error {
	return s.access(func(c *eeprom.Controller) error {
		if !c.Detect() {
			return fmt.Errorf("no device at 0x%02x", cfg.Address)
		}

		return nil
	})
}

var readCmd = &cobra.Command{
	Use:   "read ADDRESS LENGTH",
	Short: "Print a range of the device as a hex dump.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := parseNumber("address", args[0])
		if err != nil {
			return err
		}

		length, err := parseNumber("length", args[1])
		if err != nil {
			return err
		}

		if length < 0 {
			return fmt.Errorf("negative length %d", length)
		}

		s, err := openSession(cfg)
		if err != nil {
			return err
		}

		buf := make([]byte, length)
		n := 0
		err = s.access(func(c *eeprom.Controller) error {
			n, err = c.Read(address, buf)
			return err
		})
		if err != nil {
			return err
		}

		writeHexDump(cmd.OutOrStdout(), address, buf[:n])

		return nil
	},
}

var writeCmd = &cobra.Command{
	Use:   "write ADDRESS HEXDATA",
	Short: "Write hex-encoded bytes from an address on.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, err := parseNumber("address", args[0])
		if err != nil {
			return err
		}

		data, err := hex.DecodeString(strings.ReplaceAll(args[1], " ", ""))
		if err != nil {
			return fmt.Errorf("invalid data: %w", err)
		}

		s, err := openSession(cfg)
		if err != nil {
			return err
		}

		n := 0
		err = s.access(func(c *eeprom.Controller) error {
			n, err = c.BufferedWrite(address, data)
			if err != nil {
				return err
			}

			_, err = c.Flush()

			return err
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes at 0x%04x\n", n, address)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(writeCmd)
}

// writeHexDump prints 16 bytes per line, prefixed by the device address.
func writeHexDump(w io.Writer, address int, data []byte) {
	for i := 0; i < len(data); i += 16 {
		line := data[i:min(i+16, len(data))]

		fmt.Fprintf(w, "%04x:", address+i)
		for _, b := range line {
			fmt.Fprintf(w, " %02x", b)
		}

		fmt.Fprintf(w, "%*s  |", 3*(16-len(line)), "")
		for _, b := range line {
			if b < 0x20 || b > 0x7e {
				b = '.'
			}
			fmt.Fprintf(w, "%c", b)
		}
		fmt.Fprintln(w, "|")
	}
}
