package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(t.TempDir(), "test.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadDataURI(t *testing.T) {
	path := writeTestPNG(t, 4, 4)

	uri, err := LoadDataURI(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}

func TestLoadDataURIMissingFile(t *testing.T) {
	_, err := LoadDataURI(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestLoadThumbnailScalesDown(t *testing.T) {
	path := writeTestPNG(t, 640, 320)

	raw, err := LoadThumbnail(path, 64)
	require.NoError(t, err)

	thumb, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 64, thumb.Bounds().Dx())
	assert.Equal(t, 32, thumb.Bounds().Dy())
}

func TestLoadThumbnailKeepsSmallImages(t *testing.T) {
	path := writeTestPNG(t, 16, 8)

	raw, err := LoadThumbnail(path, 64)
	require.NoError(t, err)

	thumb, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 16, thumb.Bounds().Dx())
	assert.Equal(t, 8, thumb.Bounds().Dy())
}

func TestLoadThumbnailRejectsNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	_, err := LoadThumbnail(path, 64)
	assert.ErrorIs(t, err, ErrNotImage)
}
