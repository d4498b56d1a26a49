package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Stage                  string
	Port                   int
	LogLevel               zerolog.Level
	Store                  string
	DatabaseURL            string
	MaxMatchDuration       time.Duration
	MatchSweepInterval     time.Duration
	EventBuffer            int
	PlacementShipAttempts  int
	PlacementBoardAttempts int
}

// Load reads the configuration from the environment. Outside prod the given
// env files (".env" when none are given) are loaded first; a missing file is
// not an error.
func Load(envFiles ...string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("STAGE", StageDev)
	v.SetDefault("PORT", 8000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE", StoreMemory)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MAX_MATCH_DURATION", 30*time.Minute)
	v.SetDefault("MATCH_SWEEP_INTERVAL", time.Minute)
	v.SetDefault("EVENT_BUFFER", 256)
	v.SetDefault("PLACEMENT_SHIP_ATTEMPTS", 1000)
	v.SetDefault("PLACEMENT_BOARD_ATTEMPTS", 100)

	if v.GetString("STAGE") != StageProd {
		if len(envFiles) == 0 {
			envFiles = []string{".env"}
		}
		if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading env files: %w", err)
		}
	}

	level, err := zerolog.ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := Config{
		Stage:                  v.GetString("STAGE"),
		Port:                   v.GetInt("PORT"),
		LogLevel:               level,
		Store:                  v.GetString("STORE"),
		DatabaseURL:            v.GetString("DATABASE_URL"),
		MaxMatchDuration:       v.GetDuration("MAX_MATCH_DURATION"),
		MatchSweepInterval:     v.GetDuration("MATCH_SWEEP_INTERVAL"),
		EventBuffer:            v.GetInt("EVENT_BUFFER"),
		PlacementShipAttempts:  v.GetInt("PLACEMENT_SHIP_ATTEMPTS"),
		PlacementBoardAttempts: v.GetInt("PLACEMENT_BOARD_ATTEMPTS"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Stage != StageProd && c.Stage != StageDev {
		return fmt.Errorf("invalid type of development stage: %s", c.Stage)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}

	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE is postgres")
		}
	default:
		return fmt.Errorf("invalid STORE: %s", c.Store)
	}

	if c.MaxMatchDuration <= 0 || c.MatchSweepInterval <= 0 {
		return errors.New("MAX_MATCH_DURATION and MATCH_SWEEP_INTERVAL must be positive")
	}
	if c.EventBuffer <= 0 {
		return fmt.Errorf("invalid EVENT_BUFFER: %d", c.EventBuffer)
	}
	if c.PlacementShipAttempts <= 0 || c.PlacementBoardAttempts <= 0 {
		return errors.New("placement attempt limits must be positive")
	}
	return nil
}
