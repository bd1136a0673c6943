package metanorm

// metadata-only normalization: rewrite the stored orientation value
// to 1 in place, pixel data untouched. instant, but viewers which
// ignore Exif keep showing the image rotated.

import (
	"exiffix/lib/exiftag"
	"exiffix/lib/logx"
	"exiffix/lib/normalizer"
)

type Config struct{}

var DefaultConfig = Config{}

func (c Config) BuildNormalizer(
	lx logx.LoggerX) (normalizer.Normalizer, error) {

	return &MetaNormalizer{log: logx.NewLogToX(lx, "metanorm")}, nil
}

type MetaNormalizer struct {
	log logx.LogToX
}

// Normalize returns a copy of b with the orientation tag's value field
// overwritten to 1 in the IFD's declared byte order. The tag offset
// comes from the parsed IFD structure, never from a raw byte scan, so
// lookalike byte pairs inside scan data cannot get clobbered.
// Output length always equals input length.
func (m *MetaNormalizer) Normalize(b []byte, orient int) ([]byte, error) {
	inf, err := exiftag.Locate(b)
	if err != nil {
		m.log.LogPrintf(logx.DEBUG, "locate failed: %v", err)
		// input returned as-is; image stays visually rotated
		return b, normalizer.ErrTagNotFound
	}

	out := make([]byte, len(b))
	copy(out, b)
	inf.ByteOrder.PutUint16(out[inf.ValueOff:inf.ValueOff+2], 1)
	return out, nil
}
