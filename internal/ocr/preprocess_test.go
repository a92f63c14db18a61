package ocr

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessor_UpscalesSmallImages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "small.png")
	require.NoError(t, imaging.Save(imaging.New(200, 100, color.NRGBA{R: 200, G: 10, B: 10, A: 255}), src))

	p := NewPreprocessor()
	p.TempDir = dir
	prepared, cleanup, err := p.Prepare(src)
	require.NoError(t, err)

	img, err := imaging.Open(prepared)
	require.NoError(t, err)
	assert.Equal(t, PreprocessTargetHeight, img.Bounds().Dy())
	assert.Equal(t, 2400, img.Bounds().Dx())

	r, g, b, _ := img.At(10, 10).RGBA()
	assert.Equal(t, r, g, "output should be grayscale")
	assert.Equal(t, g, b, "output should be grayscale")

	cleanup()
	_, err = os.Stat(prepared)
	assert.True(t, os.IsNotExist(err))
}

func TestPreprocessor_KeepsLargeImageSize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "large.jpg")
	require.NoError(t, imaging.Save(imaging.New(300, 900, color.White), src))

	p := NewPreprocessor()
	p.TempDir = dir
	prepared, cleanup, err := p.Prepare(src)
	require.NoError(t, err)
	defer cleanup()

	img, err := imaging.Open(prepared)
	require.NoError(t, err)
	assert.Equal(t, 900, img.Bounds().Dy())
	assert.Equal(t, ".png", filepath.Ext(prepared))
}

func TestPreprocessor_UndecodableImage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o644))

	_, cleanup, err := NewPreprocessor().Prepare(src)
	assert.Error(t, err)
	assert.Nil(t, cleanup)

	var ocrErr *OCRError
	assert.ErrorAs(t, err, &ocrErr)
}
