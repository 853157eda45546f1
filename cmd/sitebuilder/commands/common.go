// Package commands implements the sitebuilder CLI commands.
package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// LogLevelEnv overrides the log level unless --verbose is given.
const LogLevelEnv = "SITEBUILDER_LOG_LEVEL"

// Global is shared state bound into every command.
type Global struct {
	Console *Console
}

// NewGlobal returns the Global for a process writing user output to out.
func NewGlobal(out *os.File) *Global {
	return &Global{Console: NewConsole(out)}
}

// CLI is the root command and its global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the site into the output directory"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
	Nav   NavCmd   `cmd:"" help:"Print the navigation tree without writing output"`
	Watch WatchCmd `cmd:"" help:"Build, then rebuild whenever content changes"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := parseLogLevel(c.Verbose)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// parseLogLevel picks Debug for --verbose, else the level named by
// SITEBUILDER_LOG_LEVEL, else Info.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads the configuration file and applies the --output override.
func loadConfig(path, outputOverride string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if outputOverride != "" {
		cfg.Output.Directory = outputOverride
	}
	return cfg, nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
