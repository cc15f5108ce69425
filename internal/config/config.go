package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	MediaS3    = "s3"
	MediaLocal = "local"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"vidtube"`
	DatabaseURL   string `env:"DATABASE_URL"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"240h"`
	CookieSecure       bool          `env:"COOKIE_SECURE" envDefault:"true"`

	MediaDriver        string        `env:"MEDIA_DRIVER" envDefault:"s3"`
	MediaUploadTimeout time.Duration `env:"MEDIA_UPLOAD_TIMEOUT" envDefault:"30s"`
	MediaLocalDir      string        `env:"MEDIA_LOCAL_DIR" envDefault:"./public/media"`
	MediaLocalBaseURL  string        `env:"MEDIA_LOCAL_BASE_URL" envDefault:"/media"`
	UploadTmpDir       string        `env:"UPLOAD_TMP_DIR"`

	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3BaseEndpoint  string `env:"S3_BASE_ENDPOINT"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	ChannelCacheTTL time.Duration `env:"CHANNEL_CACHE_TTL" envDefault:"1m"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.UploadTmpDir == "" {
		cfg.UploadTmpDir = os.TempDir()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate revisa combinaciones que las etiquetas env no pueden expresar.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for store driver %q", c.StoreDriver)
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	switch c.MediaDriver {
	case MediaS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for media driver %q", c.MediaDriver)
		}
	case MediaLocal:
	default:
		return fmt.Errorf("unknown media driver %q", c.MediaDriver)
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("access and refresh token secrets must differ")
	}
	if c.MediaUploadTimeout <= 0 {
		return fmt.Errorf("MEDIA_UPLOAD_TIMEOUT must be positive")
	}
	return nil
}
