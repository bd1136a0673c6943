package fixcfg

// TOML config for the correction tool. an unknown strategy is the one
// fatal misconfiguration and must be caught before any image is
// touched.

import (
	"io/ioutil"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

const (
	StrategyMetadata = "metadata"
	StrategyPixel    = "pixel"
)

type PixelConfig struct {
	MaxWidth    int   `toml:"max_width"`
	MaxHeight   int   `toml:"max_height"`
	MaxPixels   int   `toml:"max_pixels"`
	MaxFileSize int64 `toml:"max_file_size"`
	Quality     int   `toml:"quality"`
}

type Config struct {
	Strategy string      `toml:"strategy"`
	Workers  int         `toml:"workers"`
	Manifest bool        `toml:"manifest"`
	LogLevel string      `toml:"log_level"`
	Pixel    PixelConfig `toml:"pixel"`
}

var DefaultConfig = Config{
	Strategy: StrategyPixel,
	Manifest: true,
	LogLevel: "notice",
	Pixel: PixelConfig{
		MaxWidth:    8192,
		MaxHeight:   8192,
		MaxPixels:   4096 * 4096,
		MaxFileSize: 64 * 1024 * 1024,
		Quality:     100,
	},
}

func (fc *Config) Validate() error {
	switch fc.Strategy {
	case StrategyMetadata, StrategyPixel:
	default:
		return xerrors.Errorf("fixcfg: unknown strategy %q", fc.Strategy)
	}
	if fc.Pixel.Quality < 1 || fc.Pixel.Quality > 100 {
		return xerrors.Errorf(
			"fixcfg: jpeg quality %d out of [1,100]", fc.Pixel.Quality)
	}
	return nil
}

func Parse(cfg string) (fc Config, err error) {
	fc = DefaultConfig
	_, err = toml.Decode(cfg, &fc)
	if err != nil {
		err = xerrors.Errorf("fixcfg: toml decode: %w", err)
		return
	}
	err = fc.Validate()
	return
}

func ParseFile(path string) (fc Config, err error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		err = xerrors.Errorf("fixcfg: read %q: %w", path, err)
		return
	}
	return Parse(string(b))
}
