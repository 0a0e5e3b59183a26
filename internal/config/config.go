package config

import (
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int     `envconfig:"PORT" default:"8080"`
	StaticDir      string  `envconfig:"STATIC_DIR" default:"./web"`
	FrameDir       string  `envconfig:"FRAME_DIR" default:"./data/frames"`
	FfmpegPath     string  `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	DefaultSlices  int     `envconfig:"DEFAULT_SLICES" default:"1"`
	MaxSlices      int     `envconfig:"MAX_SLICES" default:"12"`
	HexRadius      float64 `envconfig:"HEX_RADIUS" default:"150"`
	PleatDepth     float64 `envconfig:"PLEAT_DEPTH" default:"40"`
	HandleRadius   float64 `envconfig:"HANDLE_RADIUS" default:"14"`
	Background     string  `envconfig:"BACKGROUND" default:"#0b0b12"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"localhost:8080,localhost:5173"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Origins splits AllowedOrigins into websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
