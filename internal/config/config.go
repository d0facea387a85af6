package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends for documents.
const (
	BackendFilesystem = "filesystem"
	BackendSQLite     = "sqlite"
	BackendMinio      = "minio"
	BackendMemory     = "memory"
)

// Credential backends.
const (
	CredentialsFile   = "file"
	CredentialsSQLite = "sqlite"
)

// Config contains server configuration parameters.
type Config struct {
	Port         string     `env:"PORT" envDefault:"8080"`
	LogLevel     slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	DatabasePath string     `env:"DATABASE_PATH" envDefault:"cms.db"`
	Session      Session    `envPrefix:"SESSION_"`
	Auth         Auth
	Storage      Storage     `envPrefix:"STORAGE_"`
	Credentials  Credentials `envPrefix:"CREDENTIALS_"`
	Minio        Minio       `envPrefix:"MINIO_"`
}

// Session contains session cookie parameters.
type Session struct {
	Secret string `env:"SECRET,required,notEmpty"`
	// Secure marks the cookie Secure. Disable only for local development.
	Secure bool `env:"SECURE" envDefault:"true"`
}

// Auth contains password hashing and sign-in throttling parameters.
type Auth struct {
	BcryptCost  int     `env:"BCRYPT_COST" envDefault:"12"`
	SigninRate  float64 `env:"SIGNIN_RATE" envDefault:"0.2"`
	SigninBurst float64 `env:"SIGNIN_BURST" envDefault:"5"`
}

// Storage selects where documents live.
type Storage struct {
	Backend string `env:"BACKEND" envDefault:"filesystem"`
	DataDir string `env:"DATA_DIR" envDefault:"data"`
}

// Credentials selects where the username to hash mapping lives.
type Credentials struct {
	Backend string `env:"BACKEND" envDefault:"file"`
	File    string `env:"FILE" envDefault:"users.yml"`
}

// Minio contains object storage parameters.
type Minio struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"cms-documents"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and enumerations that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters for HMAC-SHA256 security"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.Auth.BcryptCost))
	}
	if c.Auth.SigninRate < 0 {
		errs = append(errs, fmt.Errorf("SIGNIN_RATE must not be negative, got %v", c.Auth.SigninRate))
	}
	if c.Auth.SigninBurst < 1 {
		errs = append(errs, fmt.Errorf("SIGNIN_BURST must be at least 1, got %v", c.Auth.SigninBurst))
	}

	switch c.Storage.Backend {
	case BackendFilesystem, BackendSQLite, BackendMemory:
	case BackendMinio:
		if c.Minio.AccessKey == "" || c.Minio.SecretKey == "" {
			errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}

	switch c.Credentials.Backend {
	case CredentialsFile, CredentialsSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown CREDENTIALS_BACKEND %q", c.Credentials.Backend))
	}
	return errors.Join(errs...)
}

// NeedsDatabase reports whether any backend is SQLite.
func (c *Config) NeedsDatabase() bool {
	return c.Storage.Backend == BackendSQLite || c.Credentials.Backend == CredentialsSQLite
}
