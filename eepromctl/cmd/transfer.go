package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/eeprom/eeprom"
	"github.com/spf13/cobra"
)

// chunkSize is how many bytes are moved between two progress updates.
const chunkSize = 256

var rangeStart, rangeLength int

var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Copy the device contents into a file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cfg)
		if err != nil {
			return err
		}

		start, length, err := selectRange(cfg.Model.Capacity)
		if err != nil {
			return err
		}

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		p := s.startProgress("Dump", length)
		defer p.done()

		section := io.NewSectionReader(s.ctrl, int64(start), int64(length))
		buf := make([]byte, chunkSize)
		total := 0

		for {
			n := 0
			err = s.access(func(*eeprom.Controller) error {
				n, err = section.Read(buf)
				return err
			})

			if n > 0 {
				if _, werr := f.Write(buf[:n]); werr != nil {
					return werr
				}

				total += n
				p.advance(n)
			}

			if err == io.EOF {
				break
			}

			if err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "dumped %d bytes from 0x%04x\n",
			total, start)

		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load FILE",
	Short: "Write a file into the device.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cfg)
		if err != nil {
			return err
		}

		n, err := bufferedCopy(s, "Load", rangeStart, data)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d bytes at 0x%04x\n",
			n, rangeStart)

		return nil
	},
}

var fillCmd = &cobra.Command{
	Use:   "fill VALUE",
	Short: "Set a range of the device to one value.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := parseNumber("value", args[0])
		if err != nil {
			return err
		}

		if value < 0 || value > 0xff {
			return fmt.Errorf("value %d does not fit in a byte", value)
		}

		s, err := openSession(cfg)
		if err != nil {
			return err
		}

		start, length, err := selectRange(cfg.Model.Capacity)
		if err != nil {
			return err
		}

		data := bytes.Repeat([]byte{byte(value)}, length)

		n, err := bufferedCopy(s, "Fill", start, data)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "filled %d bytes at 0x%04x with 0x%02x\n",
			n, start, value)

		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{dumpCmd, fillCmd} {
		c.Flags().IntVar(&rangeStart, "start", 0, "first address")
		c.Flags().IntVar(&rangeLength, "length", -1,
			"number of bytes, -1 for up to the end of the device")
	}

	loadCmd.Flags().IntVar(&rangeStart, "start", 0, "first address")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(fillCmd)
}

func selectRange(capacity int) (start, length int, err error) {
	if rangeStart < 0 || rangeStart >= capacity {
		return 0, 0, fmt.Errorf("start 0x%x is outside the device", rangeStart)
	}

	length = capacity - rangeStart
	if rangeLength >= 0 {
		length = min(rangeLength, length)
	}

	return rangeStart, length, nil
}

// bufferedCopy writes data through the write buffer in chunks so that a
// monitor can follow the progress.
func bufferedCopy(s *session, name string, start int, data []byte) (int, error) {
	capacity := s.ctrl.Capacity()
	if start < 0 || start >= capacity {
		return 0, fmt.Errorf("start 0x%x is outside the device", start)
	}

	// Clamped at the end of the device.
	data = data[:min(len(data), capacity-start)]

	p := s.startProgress(name, len(data))
	defer p.done()

	written := 0
	for written < len(data) {
		chunk := data[written:min(written+chunkSize, len(data))]

		var n int
		err := s.access(func(c *eeprom.Controller) error {
			var err error
			n, err = c.BufferedWrite(start+written, chunk)
			return err
		})
		if err != nil {
			return written, err
		}

		p.advance(n)
		written += n

		if n < len(chunk) {
			break
		}
	}

	err := s.access(func(c *eeprom.Controller) error {
		_, err := c.Flush()
		return err
	})

	return written, err
}
