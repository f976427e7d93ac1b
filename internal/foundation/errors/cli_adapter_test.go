package errors

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestAdapter(verbose bool) (*CLIErrorAdapter, *bytes.Buffer, *int) {
	out := &bytes.Buffer{}
	code := -1
	a := NewCLIErrorAdapter(verbose, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.out = out
	a.exit = func(c int) { code = c }
	return a, out, &code
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter, _, _ := newTestAdapter(false)

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"input", InputError("bad front matter").Build(), 3},
		{"config", ConfigError("bad config").Build(), 7},
		{"qr", QRError("emit failed").Build(), 11},
		{"filesystem", FileSystemError("write failed").Build(), 11},
		{"runtime", RuntimeError("watch failed").Build(), 12},
		{"internal", InternalError("bug").Build(), 10},
		{"unclassified", errors.New("unknown error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet, _, _ := newTestAdapter(false)
	verbose, _, _ := newTestAdapter(true)

	cause := errors.New("permission denied")
	err := WrapError(cause, CategoryFileSystem, "write output").Build()

	if got := quiet.FormatError(err); got != "Error: write output: permission denied" {
		t.Errorf("unexpected quiet message %q", got)
	}
	if got := verbose.FormatError(err); !strings.Contains(got, "[filesystem:error]") {
		t.Errorf("expected verbose message to include classification, got %q", got)
	}
	if got := quiet.FormatError(InternalError("bug").Build()); !strings.Contains(got, "use -v") {
		t.Errorf("expected internal errors to be hidden, got %q", got)
	}
	if got := quiet.FormatError(errors.New("boom")); got != "Error: boom" {
		t.Errorf("unexpected unclassified message %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	adapter, out, code := newTestAdapter(false)

	adapter.HandleError(nil)
	if *code != -1 {
		t.Fatalf("expected no exit for nil error, got %d", *code)
	}

	adapter.HandleError(QRError("qr emission failed").Build())
	if *code != 11 {
		t.Errorf("expected exit code 11, got %d", *code)
	}
	if !strings.Contains(out.String(), "qr emission failed") {
		t.Errorf("expected message on output, got %q", out.String())
	}
}
