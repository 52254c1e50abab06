package media

import (
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	// maxBound caps either dimension before any cropping; images are never
	// upscaled to reach it.
	maxBound = 1600

	// Cropped images land on a fixed 16:9 canvas.
	canvasWidth  = 1200
	canvasHeight = 675

	jpegQuality = 85

	publicPrefix = "/media/"
)

// CropRect is a caller-supplied crop rectangle in post-orientation,
// post-downscale pixel coordinates.
type CropRect struct {
	X, Y, W, H int
}

// Store writes processed recipe images into a public media directory and
// hands back their public paths.
type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Ingest runs the upload pipeline: decode, normalize EXIF orientation, bound
// to 1600px, optionally crop-and-resize to the 1200x675 canvas, encode as
// JPEG quality 85 under a random filename.
//
// A recipe without a photo is still a valid recipe, so ingest is best-effort:
// undecodable bytes (or a failed write) log a warning and return the empty
// path. Callers must treat "" as the expected no-image outcome.
func (s *Store) Ingest(r io.Reader, crop *CropRect) string {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		s.logger.Warn("image decode failed, saving recipe without image", "error", err)
		return ""
	}

	img = imaging.Fit(img, maxBound, maxBound, imaging.Lanczos)

	if crop != nil {
		img = imaging.Crop(img, clampRect(*crop, img.Bounds().Dx(), img.Bounds().Dy()))
		img = imaging.Resize(img, canvasWidth, canvasHeight, imaging.Lanczos)
	}

	name := randomName()
	out := filepath.Join(s.dir, name)

	// O_EXCL: a random-id collision must never overwrite an earlier upload.
	f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.logger.Warn("image write failed, saving recipe without image", "error", err)
		return ""
	}
	defer f.Close()

	if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		s.logger.Warn("image encode failed, saving recipe without image", "error", err)
		os.Remove(out)
		return ""
	}

	return publicPrefix + name
}

// clampRect forces the rectangle inside the w x h source so cropping can
// never fail: origin pushed into the image, extent trimmed to what remains,
// both floored at a 1px minimum.
func clampRect(c CropRect, width, height int) image.Rectangle {
	x := clamp(c.X, 0, width-1)
	y := clamp(c.Y, 0, height-1)
	w := clamp(c.W, 1, width-x)
	h := clamp(c.H, 1, height-y)
	return image.Rect(x, y, x+w, y+h)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func randomName() string {
	id := uuid.New()
	return hex.EncodeToString(id[:]) + ".jpg"
}
