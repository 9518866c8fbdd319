package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Templates TemplatesConfig `json:"templates"`
	Render    RenderConfig    `json:"render"`
	Sequence  SequenceConfig  `json:"sequence"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	AWS       AWSConfig       `json:"aws"`
	Archive   ArchiveConfig   `json:"archive"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Mode            string        `json:"mode"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// TemplatesConfig locates template definitions and their background assets
type TemplatesConfig struct {
	// Dir holds extra *.yaml definitions; they replace built-ins with the same ID.
	Dir         string `json:"dir"`
	AssetsDir   string `json:"assets_dir"`
	CacheAssets bool   `json:"cache_assets"`
	FontPath    string `json:"font_path"`
}

// RenderConfig controls how canvases are embedded into the PDF
type RenderConfig struct {
	ImageFormat string `json:"image_format"` // png, jpeg
	JPEGQuality int    `json:"jpeg_quality"`
	Creator     string `json:"creator"`
}

// SequenceConfig selects the document number store
type SequenceConfig struct {
	Backend   string `json:"backend"` // file, database, redis, dynamodb
	Name      string `json:"name"`
	FilePath  string `json:"file_path"`
	RedisKey  string `json:"redis_key"`
	TableName string `json:"table_name"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver         string        `json:"driver"` // postgres, sqlite
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	Path           string        `json:"path"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// RedisConfig
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// AWSConfig is shared by the archive and the dynamodb counter
type AWSConfig struct {
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// ArchiveConfig
type ArchiveConfig struct {
	Enabled bool   `json:"enabled"`
	Bucket  string `json:"bucket"`
	Prefix  string `json:"prefix"`
}

// LoggingConfig
type LoggingConfig struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Templates: TemplatesConfig{
			AssetsDir: "assets",
			FontPath:  "arial.ttf",
		},
		Render: RenderConfig{
			ImageFormat: "png",
			JPEGQuality: 90,
			Creator:     "BOb-from",
		},
		Sequence: SequenceConfig{
			Backend:   "file",
			Name:      "sales_contract",
			FilePath:  "counter.txt",
			RedisKey:  "sequence:sales_contract",
			TableName: "document_sequences",
		},
		Database: DatabaseConfig{
			Driver:         "sqlite",
			Host:           "localhost",
			Port:           5432,
			User:           os.Getenv("USER"),
			DBName:         "bob_forms",
			SSLMode:        "disable",
			Path:           "sequences.db",
			MaxConnections: 10,
			MaxIdleConns:   2,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		AWS: AWSConfig{
			Region: "ap-south-1",
		},
		Archive: ArchiveConfig{
			Prefix: "documents",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overrideWithEnv(config *Config) {
	setString(&config.Server.Host, "SERVER_HOST")
	setInt(&config.Server.Port, "SERVER_PORT")
	setString(&config.Server.Mode, "GIN_MODE")

	setString(&config.Templates.Dir, "TEMPLATES_DIR")
	setString(&config.Templates.AssetsDir, "ASSETS_DIR")
	setString(&config.Templates.FontPath, "FONT_PATH")
	setBool(&config.Templates.CacheAssets, "CACHE_ASSETS")

	setString(&config.Render.ImageFormat, "RENDER_IMAGE_FORMAT")
	setInt(&config.Render.JPEGQuality, "RENDER_JPEG_QUALITY")

	setString(&config.Sequence.Backend, "SEQUENCE_BACKEND")
	setString(&config.Sequence.FilePath, "SEQUENCE_FILE")
	setString(&config.Sequence.Name, "SEQUENCE_NAME")
	setString(&config.Sequence.TableName, "SEQUENCE_TABLE")

	setString(&config.Database.Driver, "DATABASE_DRIVER")
	setString(&config.Database.Host, "DATABASE_HOST")
	setInt(&config.Database.Port, "DATABASE_PORT")
	setString(&config.Database.User, "DATABASE_USER")
	setString(&config.Database.Password, "DATABASE_PASSWORD")
	setString(&config.Database.DBName, "DATABASE_DBNAME")
	setString(&config.Database.Path, "DATABASE_PATH")

	setString(&config.Redis.Addr, "REDIS_ADDR")
	setString(&config.Redis.Password, "REDIS_PASSWORD")
	setInt(&config.Redis.DB, "REDIS_DB")

	setString(&config.AWS.Region, "AWS_REGION")
	setString(&config.AWS.Endpoint, "AWS_ENDPOINT_URL")
	setString(&config.AWS.AccessKeyID, "AWS_ACCESS_KEY_ID")
	setString(&config.AWS.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")

	setBool(&config.Archive.Enabled, "ARCHIVE_ENABLED")
	setString(&config.Archive.Bucket, "ARCHIVE_BUCKET")
	setString(&config.Archive.Prefix, "ARCHIVE_PREFIX")

	setString(&config.Logging.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate rejects combinations the server cannot start with
func (c *Config) Validate() error {
	switch c.Sequence.Backend {
	case "file", "database", "redis", "dynamodb":
	default:
		return fmt.Errorf("unknown sequence backend %q", c.Sequence.Backend)
	}
	switch c.Render.ImageFormat {
	case "png", "jpeg":
	default:
		return fmt.Errorf("unknown render image format %q", c.Render.ImageFormat)
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("archive enabled without bucket")
	}
	return nil
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
