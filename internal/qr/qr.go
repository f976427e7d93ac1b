// Package qr emits QR code images for URLs.
//
// Images are addressed by their QR reference id; the file name scheme is
// shared with the document assembler through ImageName.
package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/boombuler/barcode"
	bqr "github.com/boombuler/barcode/qr"

	ferrors "git.home.luguber.info/inful/qrnotes/internal/foundation/errors"
	"git.home.luguber.info/inful/qrnotes/internal/foundation/normalization"
)

// Emitter persists one QR image per reference id.
type Emitter interface {
	Emit(content string, referenceID int) error
}

// ImageName returns the file name of the image for referenceID.
func ImageName(referenceID int) string {
	return fmt.Sprintf("qr_%d.png", referenceID)
}

// RecoveryLevel is a QR error correction level.
type RecoveryLevel = bqr.ErrorCorrectionLevel

// Error correction levels, from about 7% to 30% recoverable codewords.
const (
	Low     RecoveryLevel = bqr.L
	Medium  RecoveryLevel = bqr.M
	High    RecoveryLevel = bqr.Q
	Highest RecoveryLevel = bqr.H
)

var recoveryLevels = normalization.NewEnum("qr.recovery_level", map[string]RecoveryLevel{
	"low":     Low,
	"l":       Low,
	"":        Medium,
	"medium":  Medium,
	"m":       Medium,
	"high":    High,
	"q":       High,
	"highest": Highest,
	"h":       Highest,
})

// ParseRecoveryLevel maps a configuration value to a QR error correction
// level. The empty string selects medium.
func ParseRecoveryLevel(s string) (RecoveryLevel, error) {
	level, err := recoveryLevels.Parse(s)
	if err != nil {
		return Medium, err
	}
	return level, nil
}

// quietZone is the border width in modules.
const quietZone = 4

// FileEmitter writes PNG images into a directory.
type FileEmitter struct {
	dir    string
	size   int
	level  RecoveryLevel
	border bool
}

// Option configures a FileEmitter.
type Option func(*FileEmitter)

// WithSize sets the PNG edge length in pixels.
func WithSize(px int) Option { return func(e *FileEmitter) { e.size = px } }

// WithRecoveryLevel sets the error correction level.
func WithRecoveryLevel(l RecoveryLevel) Option { return func(e *FileEmitter) { e.level = l } }

// WithoutBorder drops the quiet zone around the code.
func WithoutBorder() Option { return func(e *FileEmitter) { e.border = false } }

// NewFileEmitter creates dir if needed and returns an emitter writing into it.
func NewFileEmitter(dir string, opts ...Option) (*FileEmitter, error) {
	e := &FileEmitter{dir: dir, size: 256, level: Medium, border: true}
	for _, opt := range opts {
		opt(e)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "create qr directory").
			Fatal().
			WithContext("path", dir).
			Build()
	}
	return e, nil
}

// Dir returns the directory images are written to.
func (e *FileEmitter) Dir() string { return e.dir }

// Path returns the file path of the image for referenceID.
func (e *FileEmitter) Path(referenceID int) string {
	return filepath.Join(e.dir, ImageName(referenceID))
}

// Emit encodes content and writes it as qr_<referenceID>.png. An existing
// file for the same id is replaced. Empty content yields a code with a
// zero-length payload.
func (e *FileEmitter) Emit(content string, referenceID int) error {
	code, err := bqr.Encode(content, e.level, bqr.Auto)
	if err != nil {
		return e.fail(err, "encode qr code", content, referenceID)
	}

	img, err := render(code, e.size, e.border)
	if err != nil {
		return e.fail(err, "render qr image", content, referenceID)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return e.fail(err, "render qr image", content, referenceID)
	}
	if err := os.WriteFile(e.Path(referenceID), buf.Bytes(), 0o644); err != nil {
		return e.fail(err, "write qr image", content, referenceID)
	}
	return nil
}

// render draws code onto a size x size canvas using whole pixels per module,
// centered, with an optional quiet zone.
func render(code barcode.Barcode, size int, border bool) (image.Image, error) {
	bounds := code.Bounds()
	modules := bounds.Dx()
	total := modules
	if border {
		total += 2 * quietZone
	}
	scale := size / total
	if scale < 1 {
		return nil, fmt.Errorf("code needs %d modules but the image is %d pixels wide", total, size)
	}
	offset := (size - total*scale) / 2
	if border {
		offset += quietZone * scale
	}

	// Palette index 0 is white, so the canvas starts blank.
	img := image.NewPaletted(image.Rect(0, 0, size, size), color.Palette{color.White, color.Black})
	for y := 0; y < modules; y++ {
		for x := 0; x < modules; x++ {
			if !dark(code.At(bounds.Min.X+x, bounds.Min.Y+y)) {
				continue
			}
			px := image.Rect(offset+x*scale, offset+y*scale, offset+(x+1)*scale, offset+(y+1)*scale)
			draw.Draw(img, px, image.Black, image.Point{}, draw.Src)
		}
	}
	return img, nil
}

func dark(c color.Color) bool {
	y := color.GrayModel.Convert(c).(color.Gray).Y
	return y < 0x80
}

func (e *FileEmitter) fail(err error, msg, content string, referenceID int) error {
	return ferrors.WrapError(err, ferrors.CategoryQR, msg).
		Fatal().
		WithContext("qr_id", referenceID).
		WithContext("url", content).
		WithContext("path", e.Path(referenceID)).
		Build()
}

// NopEmitter discards every image. Used for inspection runs.
type NopEmitter struct{}

func (NopEmitter) Emit(string, int) error { return nil }
