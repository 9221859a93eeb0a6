package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/sarchlab/eeprom/eeprom"
	"github.com/spf13/pflag"
)

// SimulatedBus selects the in-memory bus instead of /dev/i2c-N.
const SimulatedBus = -1

// envBindings maps flags to the environment variables that can set them.
var envBindings = map[string]string{
	"bus":          "EEPROM_BUS",
	"address":      "EEPROM_ADDRESS",
	"model":        "EEPROM_MODEL",
	"trace":        "EEPROM_TRACE",
	"sim-image":    "EEPROM_SIM_IMAGE",
	"monitor-port": "EEPROM_MONITOR_PORT",
}

// Config holds the settings shared by all commands.
type Config struct {
	EnvFile     string
	Bus         int
	Address     int
	ModelName   string
	Trace       string
	SimImage    string
	MonitorPort int
	Verbosity   int

	Model eeprom.Model
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Bus:       SimulatedBus,
		Address:   0x50,
		ModelName: eeprom.M24C64.Name,
	}
}

// BindFlags registers the flags of the configuration.
func (c *Config) BindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.EnvFile, "env-file", "",
		"load EEPROM_* variables from this dotenv file (default .env if present)")
	flags.IntVar(&c.Bus, "bus", c.Bus,
		"i2c bus number N of /dev/i2c-N, -1 for a simulated bus")
	flags.IntVar(&c.Address, "address", c.Address,
		"7-bit device address, 0x50 to 0x57")
	flags.StringVar(&c.ModelName, "model", c.ModelName,
		"device model, one of "+modelNames())
	flags.StringVar(&c.Trace, "trace", "",
		"record bus transactions into this SQLite database")
	flags.StringVar(&c.SimImage, "sim-image", "",
		"file that holds the contents of the simulated device")
	flags.IntVar(&c.MonitorPort, "monitor-port", 0,
		"serve the monitor on this port while the command runs, 0 to disable")
	flags.CountVarP(&c.Verbosity, "verbose", "v", "increase log verbosity")
}

// A flagSetter is the part of a flag set that environment variables need.
type flagSetter interface {
	Changed(name string) bool
	Set(name, value string) error
}

// Load reads the dotenv file, applies the environment to flags that were not
// given on the command line and validates the result.
func (c *Config) Load(flags flagSetter) error {
	if err := loadEnvFile(c.EnvFile); err != nil {
		return err
	}

	if err := applyEnv(flags, os.LookupEnv); err != nil {
		return err
	}

	return c.validate()
}

func loadEnvFile(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}

	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func applyEnv(
	flags flagSetter,
	lookup func(key string) (string, bool),
) error {
	for flag, env := range envBindings {
		if flags.Changed(flag) {
			continue
		}

		value, ok := lookup(env)
		if !ok {
			continue
		}

		if err := flags.Set(flag, value); err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
	}

	return nil
}

func (c *Config) validate() error {
	model, ok := eeprom.LookupModel(c.ModelName)
	if !ok {
		return fmt.Errorf("unknown model %q, use one of %s",
			c.ModelName, modelNames())
	}
	c.Model = model

	if c.Address&0xf8 != 0x50 {
		return fmt.Errorf("address 0x%02x is outside 0x50-0x57", c.Address)
	}

	if c.Bus < SimulatedBus {
		return fmt.Errorf("invalid bus number %d", c.Bus)
	}

	return nil
}

func modelNames() string {
	names := make([]string, 0, len(eeprom.Models))
	for _, m := range eeprom.Models {
		names = append(names, m.Name)
	}
	sort.Strings(names)

	return fmt.Sprint(names)
}
