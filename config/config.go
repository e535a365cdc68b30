package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Engine   EngineConfig   `toml:"engine"`
	Lighting LightingConfig `toml:"lighting"`
	Physics  PhysicsConfig  `toml:"physics"`
	Assets   AssetsConfig   `toml:"assets"`
	Logging  LoggingConfig  `toml:"logging"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type EngineConfig struct {
	ExpectedEntityCount int  `toml:"expected_entity_count"`
	Culling             bool `toml:"culling"`
	BatchVertices       int  `toml:"batch_vertices"`
	Debug               bool `toml:"debug"`
}

type LightingConfig struct {
	Diffuse         bool `toml:"diffuse"`
	GammaCorrection bool `toml:"gamma_correction"`
	Blur            bool `toml:"blur"`
	BlurNum         int  `toml:"blur_num"`
	Culling         bool `toml:"culling"`
	Shadows         bool `toml:"shadows"`
}

type PhysicsConfig struct {
	GravityX float64 `toml:"gravity_x"`
	GravityY float64 `toml:"gravity_y"`
}

type AssetsConfig struct {
	ProjectDir string `toml:"project_dir"`
	AtlasFile  string `toml:"atlas_file"` // relative to project_dir
	ScriptsDir string `toml:"scripts_dir"`
	Scene      string `toml:"scene"` // scene loaded at startup
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "h2d",
			Width:  1280,
			Height: 720,
		},
		Engine: EngineConfig{
			ExpectedEntityCount: 128,
			Culling:             true,
			BatchVertices:       2000,
		},
		Lighting: LightingConfig{
			Diffuse: true,
			Blur:    true,
			BlurNum: 3,
			Culling: true,
			Shadows: true,
		},
		Physics: PhysicsConfig{
			GravityX: 0,
			GravityY: -10,
		},
		Assets: AssetsConfig{
			ProjectDir: "assets",
			AtlasFile:  "pack.json",
			ScriptsDir: "scripts",
			Scene:      "MainScene",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
