package gallery

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	imageSize   = 0.1
	imageAspect = 16.0 / 9.0

	// ScrollActiveThreshold is the scroll fraction at which the gallery counts
	// as fully scrolled into view.
	ScrollActiveThreshold = 0.999
)

// Duration is a time.Duration that reads from TOML strings such as "200ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Layout describes the logical grid.
type Layout struct {
	Columns int `toml:"columns"`
	// Rows is the logical row count; the grid holds two copies stacked
	// vertically. Zero derives it from the number of manifest entries.
	Rows       int     `toml:"rows"`
	CellHeight float64 `toml:"cell_height"`
	CellAspect float64 `toml:"cell_aspect"`
	Gap        float64 `toml:"gap"`
	// ColumnJitter scales the per-column vertical offset, in cell heights.
	ColumnJitter float64 `toml:"column_jitter"`
}

// CellWidth is the world width of one quad.
func (l Layout) CellWidth() float64 { return l.CellHeight * l.CellAspect }

// Capacity is the number of images one logical copy can hold, or 0 when the
// row count is derived.
func (l Layout) Capacity() int { return l.Columns * l.Rows }

type Config struct {
	Layout Layout `toml:"layout"`

	MaxConcurrentDownloads int `toml:"max_concurrent_downloads"`

	MinZoom     float64 `toml:"min_zoom"`
	DefaultZoom float64 `toml:"default_zoom"`
	MaxZoom     float64 `toml:"max_zoom"`

	DoubleTapWindow Duration `toml:"double_tap_window"`
	TapSlop         float64  `toml:"tap_slop"`
	PanGain         float64  `toml:"pan_gain"`
	PinchExponent   float64  `toml:"pinch_exponent"`

	SmoothingBase       float64 `toml:"smoothing_base"`
	SmoothingRate       float64 `toml:"smoothing_rate"`
	ZoomSmoothingFactor float64 `toml:"zoom_smoothing_factor"`

	MinOpacity     float64 `toml:"min_opacity"`
	FadeZoomFactor float64 `toml:"fade_zoom_factor"`
	DimmedOpacity  float64 `toml:"dimmed_opacity"`

	PrimeDelay Duration `toml:"prime_delay"`

	TextureWidth  int   `toml:"texture_width"`
	MaxCacheSize  int64 `toml:"max_cache_size"`
	MaxCacheFiles int   `toml:"max_cache_files"`
}

// DefaultConfig returns the settings the gallery ships with.
func DefaultConfig() Config {
	return Config{
		Layout: Layout{
			Columns:      12,
			Rows:         10,
			CellHeight:   imageSize,
			CellAspect:   imageAspect,
			Gap:          0.01,
			ColumnJitter: 1,
		},
		MaxConcurrentDownloads: 5,

		MinZoom:     imageSize,
		DefaultZoom: imageSize * 3,
		MaxZoom:     imageSize * 5,

		DoubleTapWindow: Duration{200 * time.Millisecond},
		TapSlop:         10,
		PanGain:         3,
		PinchExponent:   1.5,

		SmoothingBase:       0.1,
		SmoothingRate:       5,
		ZoomSmoothingFactor: 0.4,

		MinOpacity:     0.2,
		FadeZoomFactor: 2,
		DimmedOpacity:  0.2,

		PrimeDelay: Duration{100 * time.Millisecond},

		TextureWidth:  512,
		MaxCacheSize:  200 * 1024 * 1024,
		MaxCacheFiles: 2000,
	}
}

var errInvalidConfig = errors.New("invalid gallery config")

// Validate reports settings the gallery cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Layout.Columns < 1:
		return fmt.Errorf("%w: columns must be positive", errInvalidConfig)
	case c.Layout.Rows < 0:
		return fmt.Errorf("%w: rows must not be negative", errInvalidConfig)
	case c.Layout.CellHeight <= 0 || c.Layout.CellAspect <= 0:
		return fmt.Errorf("%w: cell size must be positive", errInvalidConfig)
	case c.Layout.Gap < 0:
		return fmt.Errorf("%w: gap must not be negative", errInvalidConfig)
	case c.MaxConcurrentDownloads < 1:
		return fmt.Errorf("%w: max_concurrent_downloads must be at least 1", errInvalidConfig)
	case c.MinZoom <= 0 || c.MinZoom > c.MaxZoom:
		return fmt.Errorf("%w: zoom bounds [%g, %g]", errInvalidConfig, c.MinZoom, c.MaxZoom)
	case c.DefaultZoom < c.MinZoom || c.DefaultZoom > c.MaxZoom:
		return fmt.Errorf("%w: default_zoom %g outside [%g, %g]", errInvalidConfig, c.DefaultZoom, c.MinZoom, c.MaxZoom)
	case c.SmoothingBase <= 0 || c.SmoothingBase >= 1:
		return fmt.Errorf("%w: smoothing_base must be in (0, 1)", errInvalidConfig)
	case c.SmoothingRate <= 0:
		return fmt.Errorf("%w: smoothing_rate must be positive", errInvalidConfig)
	case c.ZoomSmoothingFactor <= 0 || c.ZoomSmoothingFactor > 1:
		return fmt.Errorf("%w: zoom_smoothing_factor must be in (0, 1]", errInvalidConfig)
	case c.TapSlop < 0:
		return fmt.Errorf("%w: tap_slop must not be negative", errInvalidConfig)
	case c.PinchExponent <= 0:
		return fmt.Errorf("%w: pinch_exponent must be positive", errInvalidConfig)
	case c.FadeZoomFactor <= 0:
		return fmt.Errorf("%w: fade_zoom_factor must be positive", errInvalidConfig)
	case c.MinOpacity < 0 || c.MinOpacity > 1:
		return fmt.Errorf("%w: min_opacity must be in [0, 1]", errInvalidConfig)
	}
	return nil
}

// LoadConfig reads a TOML file over the defaults. Keys missing from the file
// keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("read gallery config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%w: unknown key %q in %s", errInvalidConfig, undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
