package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvDebug is the environment variable that raises the default log level to
// debug when set to "1" (CHARON_DEBUG in spec §6).
const EnvDebug = "CHARON_DEBUG"

// Flags holds CLI flag names for log configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Level  string
	Format string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds CLI flag values for log configuration.
//
// Create instances with [NewConfigFromEnv] (which honors [EnvDebug]) and
// register CLI flags with [Config.RegisterFlags] so a flag can still
// override the environment default. Use [Config.NewHandler] to build a
// [slog.Handler] for logging.
type Config struct {
	Level  string
	Format string
	Flags  Flags
}

// NewConfig returns a new [Config] defaulting to info/text.
// Use [Config.RegisterFlags] to add CLI flags, or set values directly.
func NewConfig() *Config {
	f := Flags{
		Level:  "log-level",
		Format: "log-format",
	}

	cfg := f.NewConfig()
	cfg.Level = string(LevelInfo)
	cfg.Format = string(FormatText)

	return cfg
}

// NewConfigFromEnv returns a new [Config] whose default level is raised to
// debug when [EnvDebug] is "1", matching spec §6's CHARON_DEBUG.
// [Config.RegisterFlags] registers a flag that can still override this.
func NewConfigFromEnv() *Config {
	cfg := NewConfig()
	if os.Getenv(EnvDebug) == "1" {
		cfg.Level = string(LevelDebug)
	}

	return cfg
}

// RegisterFlags adds logging flags to the given [*pflag.FlagSet], defaulting
// to whatever the [Config] currently holds (so environment defaults survive
// unless overridden on the command line).
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, c.Level,
		fmt.Sprintf("log level, one of: %s", GetAllLevelStrings()))
	flags.StringVar(&c.Format, c.Flags.Format, c.Format,
		fmt.Sprintf("log format, one of: %s", GetAllFormatStrings()))
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Level,
		cobra.FixedCompletions(GetAllLevelStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-level completion: %w", err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Format,
		cobra.FixedCompletions(GetAllFormatStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering log-format completion: %w", err)
	}

	return nil
}

// NewHandler creates a new [slog.Handler] that writes to w, using the level
// and format strings stored in c.
func (c *Config) NewHandler(w io.Writer) (slog.Handler, error) {
	return NewHandlerFromStrings(w, c.Level, c.Format)
}
