package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), slog.New(slog.NewTextHandler(os.Stderr, nil)))
	require.NoError(t, err)
	return store
}

func jpegBytes(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return &buf
}

func storedImage(t *testing.T, store *Store, publicPath string) image.Image {
	t.Helper()
	name := filepath.Base(publicPath)
	img, err := imaging.Open(filepath.Join(store.dir, name))
	require.NoError(t, err)
	return img
}

func TestIngestPathFormat(t *testing.T) {
	store := newTestStore(t)

	path := store.Ingest(jpegBytes(t, 100, 80), nil)

	// No stray suffix characters, ever.
	assert.Regexp(t, regexp.MustCompile(`^/media/[0-9a-f]{32}\.jpg$`), path)
}

func TestIngestBoundsLargeImages(t *testing.T) {
	store := newTestStore(t)

	path := store.Ingest(jpegBytes(t, 3200, 1800), nil)
	require.NotEmpty(t, path)

	img := storedImage(t, store, path)
	assert.Equal(t, 1600, img.Bounds().Dx())
	assert.Equal(t, 900, img.Bounds().Dy())
}

func TestIngestNeverUpscales(t *testing.T) {
	store := newTestStore(t)

	path := store.Ingest(jpegBytes(t, 320, 240), nil)
	require.NotEmpty(t, path)

	img := storedImage(t, store, path)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestIngestCropProducesFixedCanvas(t *testing.T) {
	store := newTestStore(t)

	path := store.Ingest(jpegBytes(t, 800, 600), &CropRect{X: 100, Y: 50, W: 400, H: 225})
	require.NotEmpty(t, path)

	img := storedImage(t, store, path)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 675, img.Bounds().Dy())
}

func TestIngestCropClampedToImageBounds(t *testing.T) {
	store := newTestStore(t)

	// Rectangle reaches far outside the 800x600 source; must clamp, not fail.
	path := store.Ingest(jpegBytes(t, 800, 600), &CropRect{X: 700, Y: 500, W: 5000, H: 5000})
	require.NotEmpty(t, path)

	img := storedImage(t, store, path)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 675, img.Bounds().Dy())
}

func TestIngestDecodeFailureReturnsEmptyPath(t *testing.T) {
	store := newTestStore(t)

	path := store.Ingest(bytes.NewBufferString("definitely not an image"), nil)
	assert.Empty(t, path)

	// Nothing may be left behind in the media dir.
	entries, err := os.ReadDir(store.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClampRect(t *testing.T) {
	tests := []struct {
		name string
		crop CropRect
		want image.Rectangle
	}{
		{"inside", CropRect{X: 10, Y: 20, W: 100, H: 50}, image.Rect(10, 20, 110, 70)},
		{"negative origin", CropRect{X: -5, Y: -5, W: 100, H: 50}, image.Rect(0, 0, 100, 50)},
		{"overflow extent", CropRect{X: 700, Y: 500, W: 400, H: 400}, image.Rect(700, 500, 800, 600)},
		{"origin past edge", CropRect{X: 9000, Y: 9000, W: 10, H: 10}, image.Rect(799, 599, 800, 600)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampRect(tt.crop, 800, 600))
		})
	}
}
