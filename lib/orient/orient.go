package orient

// Exif orientation code to geometric transform mapping.

import (
	"image"

	"github.com/disintegration/imaging"
)

// Transform is the physical correction an orientation code asks for:
// clockwise rotation, then horizontal mirror. With this composition
// code 5 comes out as transpose and code 7 as transverse.
type Transform struct {
	Rotation int  // clockwise degrees, one of 0, 90, 180, 270
	Mirrored bool // horizontal flip, applied after rotation
}

// fixed per Exif spec; index 0 unused
var codeTable = [9]Transform{
	1: {0, false},
	2: {0, true},
	3: {180, false},
	4: {180, true},
	5: {90, true},
	6: {90, false},
	7: {270, true},
	8: {270, false},
}

// FromCode maps an orientation code to its Transform.
// Codes outside [1,8] map to identity, defensively.
func FromCode(code int) Transform {
	if code < 1 || code > 8 {
		return Transform{}
	}
	return codeTable[code]
}

// Identity reports whether the transform changes nothing.
func (t Transform) Identity() bool {
	return t.Rotation == 0 && !t.Mirrored
}

// Swaps reports whether applying the transform swaps width and height.
func (t Transform) Swaps() bool {
	return t.Rotation == 90 || t.Rotation == 270
}

// RotWH returns the dimensions a w×h image has after the transform.
func (t Transform) RotWH(w, h int) (int, int) {
	if t.Swaps() {
		return h, w
	}
	return w, h
}

// Apply renders img with the transform applied.
// imaging rotates counterclockwise, so the clockwise amounts invert.
func Apply(img image.Image, t Transform) *image.NRGBA {
	var out *image.NRGBA
	switch t.Rotation {
	case 90:
		out = imaging.Rotate270(img)
	case 180:
		out = imaging.Rotate180(img)
	case 270:
		out = imaging.Rotate90(img)
	default:
		out = imaging.Clone(img)
	}
	if t.Mirrored {
		out = imaging.FlipH(out)
	}
	return out
}
