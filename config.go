package prismscene

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/soypat/geometry/ms3"
)

// Config configures a [Session] and its hosts. The zero value is not valid, start from [DefaultConfig].
type Config struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	// FOV is the camera's vertical field of view in degrees.
	FOV  float32 `toml:"fov"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
	// Camera is the initial camera position. The camera always looks at the origin.
	Camera [3]float32 `toml:"camera"`
	// Seed seeds the random number generator. Zero picks a random seed.
	Seed  uint64      `toml:"seed"`
	Label LabelConfig `toml:"label"`
	// FPS paces headless frame sources. Windowed hosts follow the display refresh.
	FPS int `toml:"fps"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level"`

	// Logger receives diagnostics. If nil slog.Default is used.
	Logger *slog.Logger `toml:"-"`
}

// LabelConfig configures the text label placed near the origin.
type LabelConfig struct {
	Text string `toml:"text"`
	// Font is a TTF file path or http(s) URL. Empty uses the embedded default font.
	Font     string     `toml:"font"`
	Position [3]float32 `toml:"position"`
	// Size is the height of an em in world units.
	Size float32 `toml:"size"`
}

// DefaultConfig returns the stock scene configuration.
func DefaultConfig() Config {
	return Config{
		Width:  800,
		Height: 600,
		FOV:    75,
		Near:   0.1,
		Far:    1000,
		Camera: [3]float32{0, 0, 5},
		Label: LabelConfig{
			Text:     "2012",
			Position: [3]float32{0, 0, -3},
			Size:     1,
		},
		FPS:      60,
		LogLevel: "info",
	}
}

// LoadConfigFile overlays the TOML file at path on top of [DefaultConfig] and validates the result.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = toml.Unmarshal(b, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("decoding %s: %w", path, err)
	}
	err = cfg.Validate()
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the scene cannot be built with.
func (cfg Config) Validate() error {
	var errs []error
	if cfg.Width <= 0 || cfg.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid window size %dx%d", cfg.Width, cfg.Height))
	}
	if cfg.FOV <= 0 || cfg.FOV >= 180 {
		errs = append(errs, fmt.Errorf("field of view %g out of range (0,180)", cfg.FOV))
	}
	if cfg.Near <= 0 || cfg.Far <= cfg.Near {
		errs = append(errs, fmt.Errorf("invalid clip planes near=%g far=%g", cfg.Near, cfg.Far))
	}
	cam := cfg.CameraPosition()
	if cam.X == 0 && cam.Z == 0 {
		// Position colinear with the up axis (or at the target) has no defined orientation.
		errs = append(errs, errors.New("camera must not lie on the Y axis"))
	}
	if cfg.Label.Size <= 0 {
		errs = append(errs, errors.New("label size must be positive"))
	}
	if cfg.FPS <= 0 || cfg.FPS > MaxFPS {
		errs = append(errs, fmt.Errorf("fps %d out of range (0,%d]", cfg.FPS, MaxFPS))
	}
	if _, err := cfg.level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// CameraPosition returns the configured initial camera position.
func (cfg Config) CameraPosition() ms3.Vec {
	return ms3.Vec{X: cfg.Camera[0], Y: cfg.Camera[1], Z: cfg.Camera[2]}
}

// NewLogger returns a text logger writing to stderr at the configured level.
func (cfg Config) NewLogger() (*slog.Logger, error) {
	lvl, err := cfg.level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func (cfg Config) level() (slog.Level, error) {
	var lvl slog.Level
	if cfg.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := lvl.UnmarshalText([]byte(cfg.LogLevel))
	if err != nil {
		return lvl, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

func (cfg Config) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}

func (lc LabelConfig) position() ms3.Vec {
	return ms3.Vec{X: lc.Position[0], Y: lc.Position[1], Z: lc.Position[2]}
}
