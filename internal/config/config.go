package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Matchmaking MatchmakingConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// MatchmakingConfig holds the tunables of the search and reconciliation
// loops. The defaults match the ladder's product rules.
type MatchmakingConfig struct {
	// TickInterval is the polling fallback cadence of the search loop.
	TickInterval time.Duration
	// AdjacentAfter / ExtendedAfter are the phase boundaries: same tier
	// until AdjacentAfter, tier +/-1 until ExtendedAfter, tier +/-2 after.
	AdjacentAfter time.Duration
	ExtendedAfter time.Duration
	// ResultWindow is how long the second player has to confirm after the
	// first outcome is reported.
	ResultWindow time.Duration
	// SweepInterval drives the result-timeout sweeper.
	SweepInterval time.Duration
	// HeartbeatTTL is how long a presence heartbeat stays valid;
	// JanitorInterval how often stale searching entries are reaped.
	HeartbeatTTL    time.Duration
	JanitorInterval time.Duration
}

type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("MM_TICK_INTERVAL", "2s")
	viper.SetDefault("MM_ADJACENT_AFTER", "2m")
	viper.SetDefault("MM_EXTENDED_AFTER", "4m")
	viper.SetDefault("MM_RESULT_WINDOW", "10m")
	viper.SetDefault("MM_SWEEP_INTERVAL", "30s")
	viper.SetDefault("MM_HEARTBEAT_TTL", "30s")
	viper.SetDefault("MM_JANITOR_INTERVAL", "15s")
	viper.SetDefault("LOG_LEVEL", "info")

	config := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Matchmaking: MatchmakingConfig{
			TickInterval:    viper.GetDuration("MM_TICK_INTERVAL"),
			AdjacentAfter:   viper.GetDuration("MM_ADJACENT_AFTER"),
			ExtendedAfter:   viper.GetDuration("MM_EXTENDED_AFTER"),
			ResultWindow:    viper.GetDuration("MM_RESULT_WINDOW"),
			SweepInterval:   viper.GetDuration("MM_SWEEP_INTERVAL"),
			HeartbeatTTL:    viper.GetDuration("MM_HEARTBEAT_TTL"),
			JanitorInterval: viper.GetDuration("MM_JANITOR_INTERVAL"),
		},
		Logging: LoggingConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.Matchmaking.TickInterval <= 0 {
		return fmt.Errorf("matchmaking tick interval must be positive")
	}
	if c.Matchmaking.AdjacentAfter <= 0 || c.Matchmaking.ExtendedAfter <= c.Matchmaking.AdjacentAfter {
		return fmt.Errorf("matchmaking phase boundaries must be ascending")
	}
	if c.Matchmaking.ResultWindow <= 0 {
		return fmt.Errorf("result window must be positive")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
