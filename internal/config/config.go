// Package config handles importer and viewer configuration loading and management.
package config

import "fmt"

// Cache key modes for TextureConfig.CacheKey.
const (
	CacheKeyBaseName = "basename"
	CacheKeyPath     = "path"
)

// Config holds all meshport settings.
type Config struct {
	Window  WindowConfig  `yaml:"window" toml:"window"`
	Import  ImportConfig  `yaml:"import" toml:"import"`
	Texture TextureConfig `yaml:"texture" toml:"texture"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// WindowConfig holds viewer window settings.
type WindowConfig struct {
	Width      int  `yaml:"width" toml:"width"`
	Height     int  `yaml:"height" toml:"height"`
	Fullscreen bool `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool `yaml:"vsync" toml:"vsync"`

	ScreenshotDir string `yaml:"screenshot_dir" toml:"screenshot_dir"`
}

// ImportConfig holds model import settings.
type ImportConfig struct {
	Triangulate      bool `yaml:"triangulate" toml:"triangulate"`
	GenSmoothNormals bool `yaml:"gen_smooth_normals" toml:"gen_smooth_normals"`
	FlipUVs          bool `yaml:"flip_uvs" toml:"flip_uvs"`
	CalcTangentSpace bool `yaml:"calc_tangent_space" toml:"calc_tangent_space"`

	// ShareMaterials makes meshes that reference the same source material
	// within one import share a single Material.
	ShareMaterials bool `yaml:"share_materials" toml:"share_materials"`

	ExportDir string `yaml:"export_dir" toml:"export_dir"` // Write .mesh files here after import
	Watch     bool   `yaml:"watch" toml:"watch"`           // Re-import when the model file changes
}

// TextureConfig holds texture decoding and cache settings.
type TextureConfig struct {
	SRGBAlbedo bool   `yaml:"srgb_albedo" toml:"srgb_albedo"`
	CacheKey   string `yaml:"cache_key" toml:"cache_key"` // "basename" or "path"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,

			ScreenshotDir: "screenshots",
		},
		Import: ImportConfig{
			Triangulate:      true,
			GenSmoothNormals: true,
			FlipUVs:          true,
			CalcTangentSpace: true,
			ShareMaterials:   false,
		},
		Texture: TextureConfig{
			SRGBAlbedo: false,
			CacheKey:   CacheKeyBaseName,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	switch c.Texture.CacheKey {
	case CacheKeyBaseName, CacheKeyPath:
	default:
		return fmt.Errorf("texture.cache_key must be %q or %q, got %q", CacheKeyBaseName, CacheKeyPath, c.Texture.CacheKey)
	}
	return nil
}
