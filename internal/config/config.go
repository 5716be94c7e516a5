package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr             string        `yaml:"addr"`
	JWTSecret        string        `yaml:"jwt_secret"`
	APITimeout       time.Duration `yaml:"timeout"`
	DatabasePath     string        `yaml:"database_path"`
	TokenDuration    time.Duration `yaml:"token_duration"`
	RememberDuration time.Duration `yaml:"remember_duration"`
	WorkerConfig     WorkerConfig  `yaml:"worker"`
}

type WorkerConfig struct {
	Count             int           `yaml:"count"`
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:             getEnv("SANI3Y_ADDR", ":8080"),
		JWTSecret:        getEnv("SANI3Y_JWT_SECRET", "supersecretkey"),
		APITimeout:       15 * time.Second,
		DatabasePath:     getEnv("SANI3Y_DATABASE_PATH", "sani3y.db"),
		TokenDuration:    1 * time.Hour,
		RememberDuration: 720 * time.Hour,
		WorkerConfig: WorkerConfig{
			Count:             2,
			ReconcileInterval: 5 * time.Minute,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the loaded configuration for values that are unsafe to run
// with and fills in worker defaults when the config file zeroes them out. The
// default JWT secret is only tolerated when SANI3Y_ENV is "development".
func (c *Config) Validate() error {
	if c.JWTSecret == "" || c.JWTSecret == "supersecretkey" {
		if os.Getenv("SANI3Y_ENV") != "development" {
			return fmt.Errorf("jwt_secret must be set to a non-default value outside development")
		}
	}
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.WorkerConfig.Count <= 0 {
		c.WorkerConfig.Count = 2
	}
	if c.WorkerConfig.ReconcileInterval <= 0 {
		c.WorkerConfig.ReconcileInterval = 5 * time.Minute
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
