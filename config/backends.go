package config

import (
	"context"
	"fmt"
	"log"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitRedis connects to Redis when REDIS_ADDR is set. It returns nil otherwise.
func InitRedis(ctx context.Context, cfg *AppConfig) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	log.Printf("Redis connected (%s)", cfg.RedisAddr)
	return client, nil
}

// InitMongo connects to MongoDB when MONGODB_URI is set. It returns nil otherwise.
func InitMongo(ctx context.Context, cfg *AppConfig) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Printf("MongoDB connected (%s)", cfg.MongoDatabase)
	return client, nil
}

// NewS3Client builds an S3 client with static credentials and an optional custom endpoint.
func NewS3Client(ctx context.Context, cfg *AppConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	if cfg.S3Endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(cfg.S3Endpoint))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3Endpoint != ""
	}), nil
}

// InitSentry enables error reporting when SENTRY_DSN is set.
func InitSentry(cfg *AppConfig) (bool, error) {
	if cfg.SentryDSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return false, fmt.Errorf("sentry init: %w", err)
	}
	return true, nil
}
