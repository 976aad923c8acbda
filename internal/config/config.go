package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	API      APIConfig
	Import   ImportConfig
	Storage  StorageConfig
	Kafka    KafkaConfig
	Export   ExportConfig
}

type AppConfig struct {
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// DatabaseConfig selects the catalog store. sqlite:// URLs are used for development.
type DatabaseConfig struct {
	URL      string `envconfig:"DATABASE_URL" default:"sqlite://./data/catalog.db"`
	LogLevel string `envconfig:"DB_LOG_LEVEL" default:"warn"`
}

type APIConfig struct {
	Host           string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port           string        `envconfig:"API_PORT" default:"8080"`
	ReadTimeout    time.Duration `envconfig:"API_READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"300s"`
	AllowedOrigins []string      `envconfig:"API_ALLOWED_ORIGINS" default:"*"`
}

// ImportConfig holds the reconciliation run settings.
type ImportConfig struct {
	DataRoot    string `envconfig:"IMPORT_DATA_ROOT" default:"./pjm-data"`
	FeedFile    string `envconfig:"IMPORT_FEED_FILE" default:"products.json"`
	Token       string `envconfig:"IMPORT_TOKEN" default:""`
	Commerce    bool   `envconfig:"IMPORT_COMMERCE_ENABLED" default:"true"`
	MediaPrefix string `envconfig:"IMPORT_MEDIA_PREFIX" default:"pjm_"`
}

type StorageConfig struct {
	Backend        string `envconfig:"STORAGE_BACKEND" default:"local"` // local or gcs
	LocalDir       string `envconfig:"STORAGE_LOCAL_DIR" default:"./uploads"`
	BaseURL        string `envconfig:"STORAGE_BASE_URL" default:"/uploads"`
	GCSBucket      string `envconfig:"STORAGE_GCS_BUCKET" default:""`
	GCSCredentials string `envconfig:"STORAGE_GCS_CREDENTIALS_FILE" default:""`
	ThumbnailSize  int    `envconfig:"STORAGE_THUMBNAIL_SIZE" default:"150"`

	// ThumbnailMaxPixels skips thumbnails for images whose width x height exceeds it.
	ThumbnailMaxPixels int64 `envconfig:"STORAGE_THUMBNAIL_MAX_PIXELS" default:"40000000"`
}

type KafkaConfig struct {
	Brokers   []string `envconfig:"KAFKA_BROKERS" default:""`
	FeedTopic string   `envconfig:"KAFKA_FEED_TOPIC" default:"feed-records"`
	GroupID   string   `envconfig:"KAFKA_GROUP_ID" default:"catalog-importer"`
}

// ExportConfig maps source table columns onto feed fields. Empty optional columns are skipped.
type ExportConfig struct {
	SourceDSN          string        `envconfig:"EXPORT_SOURCE_DSN" default:""`
	Table              string        `envconfig:"EXPORT_TABLE" default:"products"`
	IDColumn           string        `envconfig:"EXPORT_COLUMN_ID" default:"id"`
	TitleColumn        string        `envconfig:"EXPORT_COLUMN_TITLE" default:"title"`
	DescriptionColumn  string        `envconfig:"EXPORT_COLUMN_DESCRIPTION" default:"description"`
	PriceColumn        string        `envconfig:"EXPORT_COLUMN_PRICE" default:"price"`
	SKUColumn          string        `envconfig:"EXPORT_COLUMN_SKU" default:""`
	SizeColumn         string        `envconfig:"EXPORT_COLUMN_SIZE" default:""`
	ImageURLColumn     string        `envconfig:"EXPORT_COLUMN_IMAGE_URL" default:"image_url"`
	PublishedCondition string        `envconfig:"EXPORT_PUBLISHED_CONDITION" default:"1=1"`
	Query              string        `envconfig:"EXPORT_QUERY" default:""`
	OutputDir          string        `envconfig:"EXPORT_OUTPUT_DIR" default:""`
	HTTPTimeout        time.Duration `envconfig:"EXPORT_HTTP_TIMEOUT" default:"30s"`
	Publish            bool          `envconfig:"EXPORT_PUBLISH" default:"false"`
}

// FeedPath returns the absolute location of the feed file inside the data root.
func (i *ImportConfig) FeedPath() string {
	if filepath.IsAbs(i.FeedFile) {
		return i.FeedFile
	}
	return filepath.Join(i.DataRoot, i.FeedFile)
}

// Address returns the API listen address in host:port format.
func (a *APIConfig) Address() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// Enabled reports whether any broker is configured.
func (k *KafkaConfig) Enabled() bool {
	for _, b := range k.Brokers {
		if b != "" {
			return true
		}
	}
	return false
}

func (a *AppConfig) IsProduction() bool {
	return a.Env == "production"
}

func Load() (*Config, error) {
	// Load .env file
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Export.OutputDir == "" {
		cfg.Export.OutputDir = cfg.Import.DataRoot
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
