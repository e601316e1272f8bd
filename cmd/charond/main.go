// Package main provides the charond service entry point: it bootstraps
// logging, binds a [bus.Session] wiring a [service.Service] to a [bus.Bus],
// and blocks until interrupted. Grounded on
// original_source/Charon/Service/main.py's GLib main-loop bootstrap, recast
// as an explicit, constructed [bus.Session] per spec.md §9 rather than
// process-wide globals, and on the teacher's cobra-based
// cmd/magicschema/main.go for flag/command wiring.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ultimaker/libCharon/bus"
	"github.com/Ultimaker/libCharon/charonfile"
	"github.com/Ultimaker/libCharon/internal/logging"
	"github.com/Ultimaker/libCharon/internal/profiling"
	"github.com/Ultimaker/libCharon/internal/version"
	"github.com/Ultimaker/libCharon/service"
)

func main() {
	logCfg := logging.NewConfigFromEnv()
	busCfg := bus.NewConfig()
	profileCfg := profiling.NewConfig()

	var (
		busKind     string
		workerCount int
	)

	rootCmd := &cobra.Command{
		Use:           "charond",
		Short:         "libCharon request service",
		Long:          "charond serves start_request/cancel_request bus calls, streaming data/completed/error events back for 3D-printing container files.",
		Version:       version.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(logCfg, busCfg, profileCfg, busKind, workerCount)
		},
	}

	logCfg.RegisterFlags(rootCmd.Flags())
	busCfg.RegisterFlags(rootCmd.Flags())
	profileCfg.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().StringVar(&busKind, "bus", "loopback",
		"bus transport to bind: \"loopback\" for local smoke-testing (the only transport this binary ships; a real D-Bus binding is an external collaborator per spec)")
	rootCmd.Flags().IntVar(&workerCount, "workers", 0, "worker pool size (0 selects the package default)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(logCfg *logging.Config, busCfg *bus.Config, profileCfg *profiling.Config, busKind string, workerCount int) error {
	handler, err := logCfg.NewHandler(os.Stderr)
	if err != nil {
		return fmt.Errorf("building log handler: %w", err)
	}

	logger := slog.New(handler)

	profiler := profileCfg.NewProfiler()
	if err := profiler.Start(); err != nil {
		return fmt.Errorf("starting profiler: %w", err)
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			logger.Error("stopping profiler", "error", err)
		}
	}()

	transport, err := newBus(busKind)
	if err != nil {
		return err
	}

	svc := service.New(charonfile.NewDispatcher(), workerCount)
	session := bus.NewSession(transport, svc, busCfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	serviceDone := make(chan error, 1)
	go func() { serviceDone <- svc.Run(ctx) }()

	if err := session.Init(ctx); err != nil {
		cancel()
		<-serviceDone

		return fmt.Errorf("initializing bus session: %w", err)
	}

	logger.Info("charond started", "bus", busKind, "session_bus", busCfg.UseSessionBus)

	<-ctx.Done()

	if err := session.Shutdown(); err != nil {
		logger.Error("shutting down bus session", "error", err)
	}

	return <-serviceDone
}

// newBus resolves the --bus flag to a concrete [bus.Bus]. "loopback" is the
// only transport this binary ships; a real D-Bus binding is an external
// collaborator per spec.md §1 and would be registered here the same way.
func newBus(kind string) (bus.Bus, error) {
	switch kind {
	case "loopback", "":
		return bus.NewLoopback(), nil
	default:
		return nil, fmt.Errorf("unknown bus transport %q: only \"loopback\" is built in", kind)
	}
}
