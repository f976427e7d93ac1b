// Package convert runs one document conversion: it reads the input, rewrites
// its inline links into footnotes, emits a QR image per distinct URL and
// writes the assembled output document.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/qrnotes/internal/assemble"
	"git.home.luguber.info/inful/qrnotes/internal/config"
	ferrors "git.home.luguber.info/inful/qrnotes/internal/foundation/errors"
	"git.home.luguber.info/inful/qrnotes/internal/frontmatter"
	"git.home.luguber.info/inful/qrnotes/internal/logfields"
	"git.home.luguber.info/inful/qrnotes/internal/markdown"
	"git.home.luguber.info/inful/qrnotes/internal/metrics"
	"git.home.luguber.info/inful/qrnotes/internal/qr"
	"git.home.luguber.info/inful/qrnotes/internal/registry"
	"git.home.luguber.info/inful/qrnotes/internal/retry"
	"git.home.luguber.info/inful/qrnotes/internal/rewrite"
)

// Result describes a finished conversion.
type Result struct {
	RunID        string                 `json:"run_id,omitempty"`
	Document     []byte                 `json:"-"`
	Footnotes    []registry.Footnote    `json:"footnotes"`
	QrReferences []registry.QrReference `json:"qr_references"`
	Diagnostics  []markdown.Diagnostic  `json:"diagnostics"`
	Fingerprint  string                 `json:"fingerprint,omitempty"`
	// Skipped is set when the existing output already matches the input fingerprint.
	Skipped bool `json:"skipped,omitempty"`
}

// Converter converts documents according to a Config.
type Converter struct {
	cfg      *config.Config
	recorder metrics.Recorder
	logger   *slog.Logger
	emitter  qr.Emitter
}

// Option configures a Converter.
type Option func(*Converter)

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(c *Converter) { c.recorder = r } }

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option { return func(c *Converter) { c.logger = l } }

// WithEmitter replaces the PNG file emitter built from the configuration.
func WithEmitter(e qr.Emitter) Option { return func(c *Converter) { c.emitter = e } }

// New returns a Converter for cfg.
func New(cfg *config.Config, opts ...Option) *Converter {
	c := &Converter{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run converts cfg.Input into cfg.Output. Every call uses a fresh registry.
//
// The output document is only written when the whole run succeeds. QR images
// emitted before a failure remain on disk.
func (c *Converter) Run(ctx context.Context, force bool) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := c.logger.With(logfields.RunID(runID))
	start := time.Now()

	res, err := c.run(ctx, logger, force)
	c.recorder.ObserveRunDuration(time.Since(start))
	switch {
	case err != nil:
		c.recorder.IncRunOutcome(metrics.OutcomeFailed)
		logger.Error("Conversion failed", logfields.Input(c.cfg.Input), logfields.Error(err))
		return nil, err
	case res.Skipped:
		c.recorder.IncRunOutcome(metrics.OutcomeSkipped)
		logger.Info("Output is up to date; skipping conversion", logfields.Output(c.cfg.Output))
	default:
		c.recorder.IncRunOutcome(metrics.OutcomeSuccess)
		logger.Info("Conversion completed",
			logfields.Output(c.cfg.Output),
			logfields.Footnotes(len(res.Footnotes)),
			logfields.QRCodes(len(res.QrReferences)),
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	}
	res.RunID = runID
	return res, nil
}

func (c *Converter) run(ctx context.Context, logger *slog.Logger, force bool) (*Result, error) {
	logger.Info("Starting conversion",
		logfields.Input(c.cfg.Input),
		logfields.Output(c.cfg.Output),
		logfields.QRDir(c.cfg.QR.Directory))

	source, err := c.stage("read", func() ([]byte, error) { return os.ReadFile(c.cfg.Input) })
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read input").
			Fatal().
			WithContext("path", c.cfg.Input).
			Build()
	}

	if c.cfg.Fingerprint && !force {
		if fp, ok := c.upToDate(source); ok {
			return &Result{Fingerprint: fp, Skipped: true}, nil
		}
	}

	emitter := c.emitter
	if emitter == nil {
		emitter, err = c.fileEmitter()
		if err != nil {
			return nil, err
		}
	}

	res, err := c.convert(source, emitter, logger)
	if err != nil {
		return nil, err
	}

	_, err = c.stage("write", func() ([]byte, error) {
		return nil, retry.Do(ctx, c.cfg.Retry.Policy(), func() error {
			if err := writeAtomic(c.cfg.Output, res.Document); err != nil {
				return ferrors.FileSystemError("write output").
					WithCause(err).
					WithContext("path", c.cfg.Output).
					Build()
			}
			return nil
		}, func(attempt int, delay time.Duration, err error) {
			logger.Warn("Writing output failed; retrying",
				logfields.Path(c.cfg.Output),
				slog.Int("attempt", attempt),
				logfields.DurationMS(float64(delay.Milliseconds())),
				logfields.Error(err))
		})
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Convert transforms source in memory. QR images are sent to emitter.
func (c *Converter) Convert(source []byte, emitter qr.Emitter) (*Result, error) {
	return c.convert(source, emitter, c.logger)
}

// Inspect runs the rewrite pass without emitting any image.
func (c *Converter) Inspect(source []byte) (*Result, error) {
	return c.convert(source, qr.NopEmitter{}, c.logger)
}

func (c *Converter) convert(source []byte, emitter qr.Emitter, logger *slog.Logger) (*Result, error) {
	doc := split(source)

	diags := markdown.Diagnose(doc.Body)
	for _, d := range diags {
		logger.Warn("Link construct is not converted to a footnote",
			slog.String("kind", string(d.Kind)),
			logfields.URL(d.Destination))
	}

	reg := registry.New()
	body, err := c.stage("rewrite", func() ([]byte, error) {
		return rewrite.New(reg, emitter, logger).Rewrite(doc.Body)
	})
	if err != nil {
		return nil, c.rewriteFailure(err)
	}

	fp := fingerprint(doc)
	preamble, err := c.preamble(doc, fp)
	if err != nil {
		return nil, err
	}

	asm := assemble.New(
		assemble.WithPreamble(preamble),
		assemble.WithLayout(c.cfg.GridLayout()),
		assemble.WithImageDir(c.cfg.QR.Directory),
		assemble.WithImageWidth(c.cfg.Layout.ImageWidth),
	)
	out, err := c.stage("assemble", func() ([]byte, error) { return asm.Assemble(body, reg) })
	if err != nil {
		return nil, err
	}

	stats := reg.Stats()
	c.recorder.AddFootnotes(stats.Footnotes)
	c.recorder.AddQRCodes(stats.QrReferences)

	return &Result{
		Document:     out,
		Footnotes:    reg.Footnotes(),
		QrReferences: reg.QrReferences(),
		Diagnostics:  diags,
		Fingerprint:  fp,
	}, nil
}

// rewriteFailure classifies an error from the rewrite stage. Only errors
// raised by the QR emitter count as emission failures.
func (c *Converter) rewriteFailure(err error) error {
	emission := errors.Is(err, rewrite.ErrEmit)
	if emission {
		c.recorder.IncQREmissionFailure()
	}
	switch {
	case ferrors.IsClassified(err):
		return err
	case emission:
		return ferrors.WrapError(err, ferrors.CategoryQR, "qr emission failed").Fatal().Build()
	default:
		return ferrors.WrapError(err, ferrors.CategoryInternal, "rewrite links").Fatal().Build()
	}
}

// preamble returns the fixed header block unless the input carries its own
// front matter or fingerprints are enabled; then the block is re-rendered
// from merged fields.
func (c *Converter) preamble(doc frontmatter.Document, fp string) (string, error) {
	includes := c.cfg.Preamble.HeaderIncludes
	if !doc.Had && !c.cfg.Fingerprint {
		return assemble.Preamble(includes), nil
	}

	fields, err := frontmatter.ParseYAML(doc.FrontMatter)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryInput, "parse front matter").Fatal().UserAction().Build()
	}
	merged := frontmatter.MergeHeaderIncludes(fields, includes)
	if c.cfg.Fingerprint {
		merged[mdfp.FingerprintField] = fp
	}
	rendered, err := frontmatter.Render(merged)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryInternal, "render front matter").Fatal().Build()
	}
	return string(rendered), nil
}

func (c *Converter) fileEmitter() (qr.Emitter, error) {
	level, err := qr.ParseRecoveryLevel(c.cfg.QR.RecoveryLevel)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid qr configuration").Fatal().Build()
	}
	opts := []qr.Option{qr.WithSize(c.cfg.QR.Size), qr.WithRecoveryLevel(level)}
	if c.cfg.QR.DisableBorder {
		opts = append(opts, qr.WithoutBorder())
	}
	return qr.NewFileEmitter(c.cfg.QR.Directory, opts...)
}

// upToDate reports whether the existing output was produced from source.
func (c *Converter) upToDate(source []byte) (string, bool) {
	fp := fingerprint(split(source))

	existing, err := os.ReadFile(c.cfg.Output)
	if err != nil {
		return fp, false
	}
	out := frontmatter.Split(existing)
	if !out.Had {
		return fp, false
	}
	fields, err := frontmatter.ParseYAML(out.FrontMatter)
	if err != nil {
		return fp, false
	}
	stored, _ := fields[mdfp.FingerprintField].(string)
	return fp, stored == fp
}

func (c *Converter) stage(name string, fn func() ([]byte, error)) ([]byte, error) {
	start := time.Now()
	out, err := fn()
	c.recorder.ObserveStageDuration(name, time.Since(start))
	return out, err
}

// split separates the front matter block from the body. A block that holds
// inline links stays part of the body so those links are rewritten too.
func split(source []byte) frontmatter.Document {
	doc := frontmatter.Split(source)
	if doc.Had && len(markdown.ScanInlineLinks(doc.FrontMatter)) > 0 {
		return frontmatter.Document{Body: source, Newline: doc.Newline}
	}
	return doc
}

func fingerprint(doc frontmatter.Document) string {
	return mdfp.CalculateFingerprintFromParts(string(doc.FrontMatter), string(doc.Body))
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".qrnotes-*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
