package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/qrnotes/internal/config"
	ferrors "git.home.luguber.info/inful/qrnotes/internal/foundation/errors"
)

// Global carries process-wide state into subcommands.
type Global struct {
	Context context.Context
	// Out receives user-facing output.
	Out io.Writer
	// Err receives command logs; nil means stderr.
	Err io.Writer
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"qrnotes.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Convert ConvertCmd `cmd:"" default:"withargs" help:"Replace inline links with footnotes and emit QR codes"`
	Links   LinksCmd   `cmd:"" help:"List the footnotes and QR references a conversion would produce"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing and installs the default logger. The
// logging block of the configuration file applies when the file loads.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logging := config.Default().Logging
	if cfg, err := config.Load(c.Config); err == nil {
		logging = cfg.Logging
	}
	slog.SetDefault(logging.NewLogger(os.Stderr, c.Verbose))
	return nil
}

// overrides holds command-line values that take precedence over the file.
type overrides struct {
	Input  string
	Output string
	QRDir  string
}

// loadConfig reads the configuration file, applies command-line overrides and
// validates the result.
func loadConfig(path string, o overrides) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.Input != "" {
		cfg.Input = o.Input
	}
	if o.Output != "" {
		cfg.Output = o.Output
	}
	if o.QRDir != "" {
		cfg.QR.Directory = o.QRDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid command-line options").
			Fatal().
			UserAction().
			Build()
	}
	return cfg, nil
}

func contextOf(g *Global) context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}

func outOf(g *Global) io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func errOf(g *Global) io.Writer {
	if g == nil || g.Err == nil {
		return os.Stderr
	}
	return g.Err
}
