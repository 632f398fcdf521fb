package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		// a missing .env is fine in development, the process env still applies
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GoEnv string `env:"GO_ENV" envDefault:"development"`
	Port  int    `env:"PORT" envDefault:"8080"`

	// Database
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"` // postgres | sqlite
	DBUserName string `env:"DB_USER_NAME"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
	DBPath     string `env:"DB_PATH" envDefault:"campus.db"` // sqlite file

	// Redis (optional search cache)
	RedisURL       string        `env:"REDIS_URL"`
	SearchCacheTTL time.Duration `env:"SEARCH_CACHE_TTL" envDefault:"5m"`

	// Photo storage
	BlobBackend string `env:"BLOB_BACKEND" envDefault:"local"` // local | spaces
	PhotoDir    string `env:"PHOTO_DIR" envDefault:"."`

	// DigitalOcean Spaces / S3
	SpacesAccessKey string `env:"DO_SPACES_ACCESS_KEY"`
	SpacesSecretKey string `env:"DO_SPACES_SECRET_KEY"`
	SpacesBucket    string `env:"DO_SPACES_BUCKET"`
	SpacesRegion    string `env:"DO_SPACES_REGION"`
	SpacesEndpoint  string `env:"DO_SPACES_ENDPOINT"`
	SpacesCDNURL    string `env:"DO_SPACES_CDN_ENDPOINT"`

	// ID cards
	IDCardDir       string        `env:"ID_CARD_DIR" envDefault:"id_cards"`
	IDCardRetention time.Duration `env:"ID_CARD_RETENTION" envDefault:"24h"`

	CronEnabled bool `env:"CRON_ENABLED" envDefault:"true"`

	// HTTP
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:3001"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// IsProduction reports whether GO_ENV is production
func (e *EnvironmentVariable) IsProduction() bool {
	return e.GoEnv == "production"
}

func Get() (*EnvironmentVariable, error) {
	var envVariables EnvironmentVariable
	if err := env.Parse(&envVariables); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if envVariables.SpacesEndpoint == "" && envVariables.SpacesRegion != "" {
		envVariables.SpacesEndpoint = fmt.Sprintf("%s.digitaloceanspaces.com", envVariables.SpacesRegion)
	}

	return &envVariables, nil
}
