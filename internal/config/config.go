package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full operational configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Feed       FeedConfig       `mapstructure:"feed"`
	Game       GameConfig       `mapstructure:"game"`
	Betting    BettingConfig    `mapstructure:"betting"`
	Settlement SettlementConfig `mapstructure:"settlement"`
}

type DatabaseConfig struct {
	DSN            string `mapstructure:"dsn"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	OperatorKey string `mapstructure:"operator_key"`
}

type FeedConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GameConfig struct {
	Year        int      `mapstructure:"year"`
	RegionOrder []string `mapstructure:"region_order"`
}

type BettingConfig struct {
	// CloseThreshold is how close to the first scheduled tip-off the
	// betting window shuts.
	CloseThreshold time.Duration `mapstructure:"close_threshold"`
	// EntryFee is in base token units (6 decimals).
	EntryFee int64  `mapstructure:"entry_fee"`
	Treasury string `mapstructure:"treasury"`
}

type SettlementConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	// Weights is the point value of a correct pick per round, rounds
	// 1 through 6. Fixed per tournament year.
	Weights []int `mapstructure:"weights"`
}

// Load reads configuration from the given file with environment
// variable override (MADPOOL_ prefix).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	v.SetEnvPrefix("MADPOOL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "madpool.db")
	v.SetDefault("database.migrations_path", "file://migrations")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("feed.timeout", "30s")
	v.SetDefault("game.region_order", []string{"WEST", "MIDWEST", "SOUTH", "EAST"})
	v.SetDefault("betting.close_threshold", "30m")
	v.SetDefault("betting.entry_fee", 20_000_000)
	v.SetDefault("settlement.batch_size", 50)
	v.SetDefault("settlement.weights", []int{1, 2, 4, 8, 16, 32})
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	if c.Game.Year < 1939 {
		return fmt.Errorf("game.year is required")
	}
	if len(c.Game.RegionOrder) != 4 {
		return fmt.Errorf("game.region_order must list exactly 4 regions")
	}
	if c.Feed.URL == "" {
		return fmt.Errorf("feed.url is required")
	}
	if c.Betting.CloseThreshold <= 0 {
		return fmt.Errorf("betting.close_threshold must be positive")
	}
	if c.Betting.EntryFee <= 0 {
		return fmt.Errorf("betting.entry_fee must be positive")
	}
	if c.Settlement.BatchSize < 1 {
		return fmt.Errorf("settlement.batch_size must be at least 1")
	}
	if len(c.Settlement.Weights) != 6 {
		return fmt.Errorf("settlement.weights must list exactly 6 rounds")
	}
	return nil
}
