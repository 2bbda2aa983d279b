package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/editor"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
)

// EnvFileVar names the variable pointing at an optional .env file.
const EnvFileVar = "POLYDESSIN_ENV_FILE"

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"localhost:4200,localhost:3000"`

	CanvasWidth  int    `envconfig:"CANVAS_WIDTH" default:"1000"`
	CanvasHeight int    `envconfig:"CANVAS_HEIGHT" default:"800"`
	Background   string `envconfig:"BACKGROUND" default:"#ffffff"`

	GridCellSize float64 `envconfig:"GRID_CELL_SIZE" default:"50"`
	Magnet       bool    `envconfig:"MAGNET" default:"false"`
	MagnetAnchor string  `envconfig:"MAGNET_ANCHOR" default:"top-left"`

	MoveStep     float64       `envconfig:"MOVE_STEP" default:"3"`
	MoveDelay    time.Duration `envconfig:"MOVE_DELAY" default:"500ms"`
	MoveInterval time.Duration `envconfig:"MOVE_INTERVAL" default:"100ms"`

	LassoCloseRadius float64 `envconfig:"LASSO_CLOSE_RADIUS" default:"20"`
	UndoCapacity     int     `envconfig:"UNDO_CAPACITY" default:"0"`
	PasteX           float64 `envconfig:"PASTE_X" default:"0"`
	PasteY           float64 `envconfig:"PASTE_Y" default:"0"`
}

// Load reads the optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load() (*Config, error) {
	path := os.Getenv(EnvFileVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", path, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	return &cfg, nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Origins splits ALLOWED_ORIGINS into websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Editor projects the settings of a drawing session.
func (c *Config) Editor() (editor.Options, error) {
	bg, err := editor.ParseColor(c.Background)
	if err != nil {
		return editor.Options{}, err
	}
	return editor.Options{
		Width:        c.CanvasWidth,
		Height:       c.CanvasHeight,
		Background:   bg,
		GridCell:     c.GridCellSize,
		Magnet:       c.Magnet,
		MagnetAnchor: geometry.ParseAnchor9(c.MagnetAnchor),
		MoveStep:     c.MoveStep,
		MoveDelay:    c.MoveDelay,
		MoveInterval: c.MoveInterval,
		CloseRadius:  c.LassoCloseRadius,
		UndoCapacity: c.UndoCapacity,
		PasteAt:      geometry.V(c.PasteX, c.PasteY),
	}, nil
}
