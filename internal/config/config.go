package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

// ArchiveConfig configures the optional S3-compatible image archive.
// The archive is disabled while Bucket is empty.
type ArchiveConfig struct {
	Bucket          string `env:"BUCKET"`
	AccountID       string `env:"ACCOUNT_ID"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	AccessKeySecret string `env:"ACCESS_KEY_SECRET"`
	Region          string `env:"REGION" envDefault:"auto"`
}

// Enabled reports whether images should be archived.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// BaseEndpoint returns the S3 endpoint, deriving the Cloudflare R2 one
// from the account id when no explicit endpoint is set.
func (a ArchiveConfig) BaseEndpoint() string {
	if a.Endpoint != "" {
		return a.Endpoint
	}
	if a.AccountID != "" {
		return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", a.AccountID)
	}
	return ""
}

// Config holds all configuration for the application. It is loaded once
// at startup and never modified afterwards.
type Config struct {
	Addr          string `env:"ADDR" envDefault:":3000"`
	SessionSecret string `env:"SESSION_SECRET,required,notEmpty"`
	SecureCookies bool   `env:"SECURE_COOKIES" envDefault:"false"`
	DatabaseURL   string `env:"DATABASE_URL" envDefault:"db.sqlite"`
	BcryptCost    int    `env:"BCRYPT_COST" envDefault:"10"`

	ImageServiceURL string `env:"IMAGE_SERVICE_URL" envDefault:"https://picsum.photos"`
	ImageWidth      int    `env:"IMAGE_WIDTH" envDefault:"800"`
	ImageHeight     int    `env:"IMAGE_HEIGHT" envDefault:"600"`

	Archive ArchiveConfig `envPrefix:"ARCHIVE_"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	if cfg.ImageWidth <= 0 || cfg.ImageHeight <= 0 {
		return nil, fmt.Errorf("image size must be positive, got %dx%d", cfg.ImageWidth, cfg.ImageHeight)
	}
	if cfg.Archive.Enabled() && cfg.Archive.BaseEndpoint() == "" && cfg.Archive.Region == "auto" {
		return nil, errors.New("ARCHIVE_BUCKET is set but neither ARCHIVE_ENDPOINT, ARCHIVE_ACCOUNT_ID nor ARCHIVE_REGION is")
	}

	return cfg, nil
}
