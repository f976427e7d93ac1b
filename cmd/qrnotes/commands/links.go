package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/qrnotes/internal/convert"
	ferrors "git.home.luguber.info/inful/qrnotes/internal/foundation/errors"
)

// LinksCmd implements the 'links' command. It never writes images or output.
type LinksCmd struct {
	Input  string `arg:"" optional:"" help:"Markdown input file (overrides the configured input)"`
	Format string `enum:"text,json" default:"text" help:"Output format (text, json)"`
}

func (l *LinksCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, overrides{Input: l.Input})
	if err != nil {
		return err
	}

	logger := cfg.Logging.NewLogger(errOf(g), root.Verbose)
	slog.SetDefault(logger)

	source, err := os.ReadFile(cfg.Input)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "read input").
			Fatal().
			WithContext("path", cfg.Input).
			Build()
	}

	res, err := convert.New(cfg, convert.WithLogger(logger)).Inspect(source)
	if err != nil {
		return err
	}

	out := outOf(g)
	if l.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printLinks(out, res)
}

func printLinks(w io.Writer, res *convert.Result) error {
	qrIDs := make(map[string]int, len(res.QrReferences))
	for _, q := range res.QrReferences {
		qrIDs[q.URL] = q.ID
	}
	for _, f := range res.Footnotes {
		if _, err := fmt.Fprintf(w, "[^%d] Q%d %s <%s>\n", f.ID, qrIDs[f.URL], f.Text, f.URL); err != nil {
			return err
		}
	}
	for _, d := range res.Diagnostics {
		if _, err := fmt.Fprintf(w, "skipped %s: %s\n", d.Kind, d.Destination); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d footnotes, %d QR codes\n", len(res.Footnotes), len(res.QrReferences))
	return err
}
