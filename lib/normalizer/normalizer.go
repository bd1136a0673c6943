package normalizer

import (
	"errors"

	"exiffix/lib/logx"
)

// Normalizer brings an image buffer to canonical orientation.
// Two strategies exist: metanorm rewrites only the stored tag value,
// pixnorm re-renders pixels so even Exif-blind viewers show the image
// upright. Both take the orientation code the caller already read.
type Normalizer interface {
	Normalize(b []byte, orient int) ([]byte, error)
}

type NormalizerBuilder interface {
	BuildNormalizer(lx logx.LoggerX) (Normalizer, error)
}

// ErrTagNotFound means the metadata strategy could not relocate the
// orientation tag and returned the input bytes unchanged. Callers
// should surface it as a warning, not discard the image.
var ErrTagNotFound = errors.New("normalizer: orientation tag not found for rewrite")
