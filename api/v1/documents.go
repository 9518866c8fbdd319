package v1

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/techcodex100/BOb-from/internal/canvas"
	"github.com/techcodex100/BOb-from/internal/config"
	"github.com/techcodex100/BOb-from/internal/documents"
	"github.com/techcodex100/BOb-from/internal/overlay"
	"github.com/techcodex100/BOb-from/internal/sequence"
	"github.com/techcodex100/BOb-from/internal/templates"
	"github.com/techcodex100/BOb-from/pkg/pdf"
	"github.com/techcodex100/BOb-from/pkg/storage"
)

// DocumentsAPI holds the document generation dependencies
type DocumentsAPI struct {
	Handler  *documents.Handler
	Service  documents.Service
	Registry *templates.Registry
	Counter  sequence.Counter

	closers []func() error
}

// Close releases the counter backend connections
func (a *DocumentsAPI) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SetupDocumentsAPI builds the generation pipeline from cfg
func SetupDocumentsAPI(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*DocumentsAPI, error) {
	api := &DocumentsAPI{}

	registry, err := buildRegistry(ctx, cfg.Templates, logger)
	if err != nil {
		return nil, err
	}
	api.Registry = registry

	fonts := canvas.NewTrueTypeProvider(cfg.Templates.FontPath, logger)
	loader := templates.NewAssetLoader(os.DirFS(cfg.Templates.AssetsDir), fonts, cfg.Templates.CacheAssets)
	if cfg.Templates.CacheAssets {
		if err := loader.Preload(ctx, registry.List()...); err != nil {
			// Missing assets fail the affected requests, not startup.
			logger.Warn("Failed to preload template assets", zap.Error(err))
		}
	}

	renderer := overlay.NewRenderer(loader, logger)
	generator := pdf.NewImageGenerator(pdf.Options{
		Format:      pdf.ImageFormat(cfg.Render.ImageFormat),
		JPEGQuality: cfg.Render.JPEGQuality,
		Creator:     cfg.Render.Creator,
	})

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg == nil {
			c, err := loadAWSConfig(ctx, cfg.AWS)
			if err != nil {
				return aws.Config{}, err
			}
			awsCfg = &c
		}
		return *awsCfg, nil
	}

	counter, err := api.buildCounter(ctx, cfg, loadAWS, logger)
	if err != nil {
		api.Close()
		return nil, err
	}
	api.Counter = counter

	var archive *documents.StorageProvider
	if cfg.Archive.Enabled {
		c, err := loadAWS()
		if err != nil {
			api.Close()
			return nil, err
		}
		client := s3.NewFromConfig(c, func(o *s3.Options) {
			if cfg.AWS.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
				o.UsePathStyle = true
			}
		})
		archive = documents.NewStorageProvider(storage.NewS3Client(client), cfg.Archive.Bucket, cfg.Archive.Prefix)
		logger.Info("Document archive enabled", zap.String("bucket", cfg.Archive.Bucket))
	}

	api.Service = documents.NewService(registry, renderer, documents.NewPDFService(generator), counter, archive, logger)
	api.Handler = documents.NewHandler(api.Service, logger)
	return api, nil
}

// RegisterDocumentsRoutes registers the compatibility routes on router and the
// catalogue under group
func RegisterDocumentsRoutes(router *gin.Engine, group *gin.RouterGroup, api *DocumentsAPI) {
	api.Handler.RegisterRoutes(router, group)
}

func buildRegistry(ctx context.Context, cfg config.TemplatesConfig, logger *zap.Logger) (*templates.Registry, error) {
	builtin, err := templates.Builtin()
	if err != nil {
		return nil, fmt.Errorf("load built-in templates: %w", err)
	}
	registry := templates.NewRegistry(builtin...)

	if cfg.Dir != "" {
		extra, err := templates.LoadFS(ctx, os.DirFS(cfg.Dir), ".")
		if err != nil {
			return nil, fmt.Errorf("load templates from %s: %w", cfg.Dir, err)
		}
		for _, t := range extra {
			registry.Register(t)
		}
		logger.Info("Loaded template definitions", zap.String("dir", cfg.Dir), zap.Int("count", len(extra)))
	}
	return registry, nil
}

func (a *DocumentsAPI) buildCounter(ctx context.Context, cfg *config.Config, loadAWS func() (aws.Config, error), logger *zap.Logger) (sequence.Counter, error) {
	seq := cfg.Sequence
	switch seq.Backend {
	case "file":
		logger.Info("Using file sequence", zap.String("path", seq.FilePath))
		return sequence.NewFileCounter(seq.FilePath), nil

	case "database":
		db, err := openDatabase(cfg.Database)
		if err != nil {
			return nil, err
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		counter := sequence.NewDBCounter(db, seq.TableName, seq.Name)
		if err := counter.Migrate(ctx); err != nil {
			return nil, err
		}
		logger.Info("Using database sequence",
			zap.String("driver", cfg.Database.Driver),
			zap.String("table", seq.TableName))
		return counter, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis not reachable, numbered documents will fail until it is",
				zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		return sequence.NewRedisCounter(client, seq.RedisKey), nil

	case "dynamodb":
		c, err := loadAWS()
		if err != nil {
			return nil, err
		}
		client := dynamodb.NewFromConfig(c, func(o *dynamodb.Options) {
			if cfg.AWS.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			}
		})
		logger.Info("Using dynamodb sequence", zap.String("table", seq.TableName))
		return sequence.NewDynamoCounter(client, seq.TableName, seq.Name), nil
	}
	return nil, fmt.Errorf("unknown sequence backend %q", seq.Backend)
}

func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.GetDatabaseURL())
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if cfg.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}
	return db, nil
}

func loadAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	c, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return c, nil
}
