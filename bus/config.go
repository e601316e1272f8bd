package bus

import (
	"os"

	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for bus configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	UseSessionBus string
	Debug         string
}

// Config carries the bus-selection and debug environment knobs spec.md §6
// names (`CHARON_USE_SESSION_BUS`, `CHARON_DEBUG`), read from the
// environment first and overridable by CLI flags via [Config.RegisterFlags].
type Config struct {
	Flags Flags

	UseSessionBus bool
	Debug         bool

	ServiceName   string
	ObjectPath    string
	InterfaceName string
}

// NewConfig creates a new [Config] with default flag names, defaults
// matching original_source/Charon/Service/main.py
// (CHARON_USE_SESSION_BUS default "1", CHARON_DEBUG default "0"), then
// applies any environment overrides.
func NewConfig() *Config {
	c := &Config{
		Flags: Flags{
			UseSessionBus: "use-session-bus",
			Debug:         "debug",
		},
		UseSessionBus: true,
		ServiceName:   DefaultServiceName,
		ObjectPath:    DefaultObjectPath,
		InterfaceName: DefaultInterfaceName,
	}

	c.applyEnv()

	return c
}

// applyEnv overlays CHARON_USE_SESSION_BUS / CHARON_DEBUG onto c's defaults,
// so a CLI flag registered afterwards still wins if explicitly passed.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("CHARON_USE_SESSION_BUS"); ok {
		c.UseSessionBus = v == "1"
	}

	if v, ok := os.LookupEnv("CHARON_DEBUG"); ok {
		c.Debug = v == "1"
	}
}

// RegisterFlags adds bus flags to the given [*pflag.FlagSet]; their
// defaults are whatever the environment already set, so an unset flag
// falls back to the environment rather than silently overriding it.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&c.UseSessionBus, c.Flags.UseSessionBus, c.UseSessionBus,
		"use the session bus instead of the system bus")
	flags.BoolVar(&c.Debug, c.Flags.Debug, c.Debug, "enable debug logging")
}
