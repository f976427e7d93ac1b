package commands

import (
	"fmt"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/qrnotes/internal/convert"
	"git.home.luguber.info/inful/qrnotes/internal/logfields"
	"git.home.luguber.info/inful/qrnotes/internal/metrics"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	Input       string `arg:"" optional:"" help:"Markdown input file (overrides the configured input)"`
	Output      string `short:"o" help:"Output file (overrides the configured output)"`
	QRDir       string `name:"qr-dir" help:"Directory for QR code images (overrides qr.directory)"`
	Force       bool   `help:"Convert even when the output fingerprint matches the input"`
	Watch       bool   `short:"w" help:"Convert again whenever the input changes"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in text format to this file"`
}

func (c *ConvertCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, overrides{Input: c.Input, Output: c.Output, QRDir: c.QRDir})
	if err != nil {
		return err
	}

	logger := cfg.Logging.NewLogger(errOf(g), root.Verbose)
	slog.SetDefault(logger)

	metricsFile := cfg.Metrics.Textfile
	if c.MetricsFile != "" {
		metricsFile = c.MetricsFile
	}
	opts := []convert.Option{convert.WithLogger(logger)}
	promRegistry := prom.NewRegistry()
	if metricsFile != "" {
		opts = append(opts, convert.WithRecorder(metrics.NewPrometheusRecorder(promRegistry)))
		defer func() {
			if err := metrics.WriteTextfile(metricsFile, promRegistry); err != nil {
				logger.Warn("Failed to write metrics textfile", logfields.Path(metricsFile), logfields.Error(err))
			}
		}()
	}

	conv := convert.New(cfg, opts...)
	ctx := contextOf(g)
	if c.Watch {
		return conv.Watch(ctx, c.Force)
	}

	res, err := conv.Run(ctx, c.Force)
	if err != nil {
		return err
	}
	out := outOf(g)
	if res.Skipped {
		_, _ = fmt.Fprintf(out, "%s is up to date\n", cfg.Output)
		return nil
	}
	_, _ = fmt.Fprintf(out, "Wrote %s (%d footnotes, %d QR codes in %s)\n",
		cfg.Output, len(res.Footnotes), len(res.QrReferences), cfg.QR.Directory)
	return nil
}
