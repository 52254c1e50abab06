package media

import "strconv"

// ParseCrop builds a CropRect from raw form values. All four components must
// be present and numeric; anything less means "no crop requested" and returns
// nil rather than an error. Values arrive as floats from the client-side
// cropper and are truncated to whole pixels.
func ParseCrop(x, y, w, h string) *CropRect {
	xi, ok := parsePixel(x)
	if !ok {
		return nil
	}
	yi, ok := parsePixel(y)
	if !ok {
		return nil
	}
	wi, ok := parsePixel(w)
	if !ok {
		return nil
	}
	hi, ok := parsePixel(h)
	if !ok {
		return nil
	}
	return &CropRect{X: max(0, xi), Y: max(0, yi), W: max(1, wi), H: max(1, hi)}
}

// ParseCropAt picks index idx out of the per-step crop arrays. Short or
// missing arrays behave like empty values at that index.
func ParseCropAt(idx int, xs, ys, ws, hs []string) *CropRect {
	return ParseCrop(at(xs, idx), at(ys, idx), at(ws, idx), at(hs, idx))
}

func at(values []string, idx int) string {
	if idx < 0 || idx >= len(values) {
		return ""
	}
	return values[idx]
}

func parsePixel(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}
