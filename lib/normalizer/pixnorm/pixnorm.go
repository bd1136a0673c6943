package pixnorm

// pixel-level normalization: decode, apply the right-angle transform,
// re-encode as max quality baseline JPEG. CPU-bound and lossy, but the
// result is upright in every viewer.

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/xerrors"

	"exiffix/lib/logx"
	"exiffix/lib/normalizer"
	"exiffix/lib/orient"
)

type Config struct {
	MaxWidth, MaxHeight int
	MaxPixels           int
	MaxFileSize         int64
	JpegOpts            *jpeg.Options
}

var DefaultConfig = Config{
	MaxWidth:    8192,
	MaxHeight:   8192,
	MaxPixels:   4096 * 4096,
	MaxFileSize: 64 * 1024 * 1024,
	JpegOpts:    &jpeg.Options{Quality: 100},
}

var ErrTooLarge = errors.New("pixnorm: image exceeds configured limits")

func (c Config) BuildNormalizer(
	lx logx.LoggerX) (normalizer.Normalizer, error) {

	return &PixNormalizer{cfg: c, log: logx.NewLogToX(lx, "pixnorm")}, nil
}

type PixNormalizer struct {
	cfg Config
	log logx.LogToX
}

// exifOrient reads orientation with an independent parser, used only
// to cross-check the code the caller handed us.
func exifOrient(r io.Reader) int {
	x, err := exif.Decode(r)
	if err == nil && x != nil {
		o, err := x.Get(exif.Orientation)
		if err == nil && o != nil && o.Count != 0 {
			if i, err := o.Int(0); err == nil {
				return i
			}
		}
	}
	return 1
}

func (p *PixNormalizer) Normalize(b []byte, orientCode int) ([]byte, error) {
	if p.cfg.MaxFileSize > 0 && int64(len(b)) > p.cfg.MaxFileSize {
		return nil, ErrTooLarge
	}

	imgcfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return nil, xerrors.Errorf("pixnorm: decode config: %w", err)
	}

	t := orient.FromCode(orientCode)

	// limits apply to the output surface
	w, h := t.RotWH(imgcfg.Width, imgcfg.Height)
	if (p.cfg.MaxWidth > 0 && w > p.cfg.MaxWidth) ||
		(p.cfg.MaxHeight > 0 && h > p.cfg.MaxHeight) ||
		(p.cfg.MaxPixels > 0 && w*h > p.cfg.MaxPixels) {

		return nil, ErrTooLarge
	}

	if x := exifOrient(bytes.NewReader(b)); x != orientCode {
		p.log.LogPrintf(logx.DEBUG,
			"orientation disagreement: caller %d, goexif %d", orientCode, x)
	}

	// XXX color profiles are ignored, same as everywhere in pure go
	oimg, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, xerrors.Errorf("pixnorm: decode: %w", err)
	}

	timg := orient.Apply(oimg, t)

	var buf bytes.Buffer
	err = jpeg.Encode(&buf, timg, p.cfg.JpegOpts)
	if err != nil {
		return nil, xerrors.Errorf("pixnorm: encode: %w", err)
	}
	return buf.Bytes(), nil
}
