package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyInput      = "input"
	KeyOutput     = "output"
	KeyQRDir      = "qr_dir"
	KeyFootnoteID = "footnote_id"
	KeyQRID       = "qr_id"
	KeyURL        = "url"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyFootnotes  = "footnotes"
	KeyQRCodes    = "qr_codes"
	KeyPath       = "path"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Input(p string) slog.Attr        { return slog.String(KeyInput, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func QRDir(p string) slog.Attr        { return slog.String(KeyQRDir, p) }
func FootnoteID(id int) slog.Attr     { return slog.Int(KeyFootnoteID, id) }
func QRID(id int) slog.Attr           { return slog.Int(KeyQRID, id) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Footnotes(n int) slog.Attr       { return slog.Int(KeyFootnotes, n) }
func QRCodes(n int) slog.Attr         { return slog.Int(KeyQRCodes, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
