package config

import "flag"

var (
	flagConfig         = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug          = flag.Bool("debug", false, "Enable debug logging")
	flagWidth          = flag.Int("width", 0, "Window width")
	flagHeight         = flag.Int("height", 0, "Window height")
	flagExport         = flag.String("export", "", "Write imported meshes as .mesh files into this directory")
	flagWatch          = flag.Bool("watch", false, "Re-import the model when the file changes")
	flagShareMaterials = flag.Bool("share-materials", false, "Share materials between meshes of one import")
	flagSRGB           = flag.Bool("srgb", false, "Decode albedo textures as sRGB")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag command-line arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagExport != "" {
		cfg.Import.ExportDir = *flagExport
	}
	if *flagWatch {
		cfg.Import.Watch = true
	}
	if *flagShareMaterials {
		cfg.Import.ShareMaterials = true
	}
	if *flagSRGB {
		cfg.Texture.SRGBAlbedo = true
	}
}
