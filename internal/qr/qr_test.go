package qr

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	bqr "github.com/boombuler/barcode/qr"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/qrnotes/internal/foundation/errors"
)

func TestImageName(t *testing.T) {
	require.Equal(t, "qr_1.png", ImageName(1))
	require.Equal(t, "qr_20.png", ImageName(20))
}

func TestParseRecoveryLevel(t *testing.T) {
	tests := []struct {
		in   string
		want RecoveryLevel
	}{
		{"", Medium},
		{"low", Low},
		{"Medium", Medium},
		{" high ", High},
		{"highest", Highest},
		{"H", Highest},
	}
	for _, tt := range tests {
		got, err := ParseRecoveryLevel(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseRecoveryLevel("extreme")
	require.Error(t, err)
}

func TestFileEmitter_WritesPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "qr_codes")
	e, err := NewFileEmitter(dir, WithSize(128), WithRecoveryLevel(High))
	require.NoError(t, err)
	require.DirExists(t, dir)

	require.NoError(t, e.Emit("https://openai.com", 1))

	data, err := os.ReadFile(filepath.Join(dir, "qr_1.png"))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 128, 128), img.Bounds())
}

func TestFileEmitter_EmptyContent(t *testing.T) {
	dir := t.TempDir()
	e, err := NewFileEmitter(dir, WithSize(64))
	require.NoError(t, err)

	require.NoError(t, e.Emit("", 1))

	data, err := os.ReadFile(filepath.Join(dir, "qr_1.png"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	// A zero-length payload fits a version 1 code of 21 modules.
	scale := 64 / (21 + 2*quietZone)
	offset := (64-(21+2*quietZone)*scale)/2 + quietZone*scale
	require.False(t, dark(img.At(0, 0)), "quiet zone")
	require.True(t, dark(img.At(offset, offset)), "top-left finder pattern")
}

func TestRender(t *testing.T) {
	code, err := bqr.Encode("https://go.dev", Medium, bqr.Auto)
	require.NoError(t, err)
	modules := code.Bounds().Dx()

	img, err := render(code, 200, true)
	require.NoError(t, err)
	scale := 200 / (modules + 2*quietZone)
	offset := (200-(modules+2*quietZone)*scale)/2 + quietZone*scale
	require.False(t, dark(img.At(offset-1, offset-1)), "quiet zone")
	require.True(t, dark(img.At(offset, offset)), "top-left finder pattern")

	img, err = render(code, modules, false)
	require.NoError(t, err)
	require.True(t, dark(img.At(0, 0)))

	_, err = render(code, modules, true)
	require.Error(t, err)
}

func TestFileEmitter_SameIDOverwrites(t *testing.T) {
	dir := t.TempDir()
	e, err := NewFileEmitter(dir, WithoutBorder())
	require.NoError(t, err)

	require.NoError(t, e.Emit("https://a.example", 1))
	require.NoError(t, e.Emit("https://b.example", 1))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFileEmitter_WriteFailureIsClassified(t *testing.T) {
	dir := t.TempDir()
	e, err := NewFileEmitter(dir)
	require.NoError(t, err)

	// A directory occupying the target name makes the write fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "qr_1.png"), 0o755))

	err = e.Emit("https://openai.com", 1)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryQR))

	classified, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	id, _ := classified.Context().Get("qr_id")
	require.Equal(t, 1, id)
}

func TestNewFileEmitter_DirectoryIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := NewFileEmitter(file)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}

func TestNopEmitter(t *testing.T) {
	require.NoError(t, NopEmitter{}.Emit("anything", 7))
}
