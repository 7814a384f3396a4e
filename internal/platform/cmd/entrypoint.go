// Package cmd holds the startup plumbing shared by randomflip commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Truvis/CodeDrop/internal/platform/config"
	"github.com/Truvis/CodeDrop/internal/platform/otel"
	"github.com/Truvis/CodeDrop/internal/platform/timeouts"
)

// Service identifiers used for telemetry resources and log prefixes.
const (
	ServiceFlip = "randomflip"
	ServiceMCP  = "mcp"
)

// RunOption adjusts RunWithTelemetry.
type RunOption func(*runOptions)

type runOptions struct {
	shutdownTimeout time.Duration
}

// WithShutdownTimeout bounds how long telemetry may take to flush on exit.
func WithShutdownTimeout(d time.Duration) RunOption {
	return func(o *runOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses flags and returns the positional arguments left over.
func ParseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	if fs == nil {
		return nil, errors.New("flag parser is required")
	}
	if err := fs.Parse(append([]string{}, args...)); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

// SetLogPrefix tags standard log output with the service name.
func SetLogPrefix(service string) {
	log.SetPrefix("[" + strings.ToUpper(strings.TrimSpace(service)) + "] ")
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// RunWithTelemetry sets up tracing for service, runs run, and flushes spans
// before returning run's error.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error, opts ...RunOption) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	options := runOptions{shutdownTimeout: timeouts.TelemetryFlush}
	for _, opt := range opts {
		opt(&options)
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), options.shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}
