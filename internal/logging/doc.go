// Package logging provides structured logging handler construction for use
// with [log/slog], shared by the charond service and its library packages.
//
// It supports three output formats ([FormatJSON], [FormatLogfmt],
// [FormatText]) and four severity levels ([LevelError], [LevelWarn],
// [LevelInfo], [LevelDebug]). Use [NewHandler] to build a handler directly,
// or build a [Config] from the environment with [NewConfigFromEnv] (honoring
// CHARON_DEBUG) and register CLI flags with [Config.RegisterFlags] so a flag
// can override the environment:
//
//	cfg := logging.NewConfigFromEnv()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
package logging
