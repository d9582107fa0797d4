package config

import (
	"os"
	"strconv"
	"strings"
)

// AppConfig holds every setting read from the environment.
type AppConfig struct {
	Environment string
	GinMode     string
	ServerPort  string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string
	DBSSLMode  string
	DebugSQL   bool

	JWTSecret      string
	JWTExpireHours int

	UploadPath    string
	StorageDriver string
	S3Bucket      string
	S3Endpoint    string
	S3Region      string
	S3AccessKey   string
	S3SecretKey   string
	S3Prefix      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	SentryDSN string

	AllowedOrigins  []string
	RateLimitPerSec int
	LogAccessToken  string
	MessageLanguage string

	AdminEmail    string
	AdminPassword string
	AdminName     string

	SMTP SMTPConfig
}

// Load reads the configuration. Call godotenv.Load before it.
func Load() *AppConfig {
	return &AppConfig{
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "development")),
		GinMode:     getEnv("GIN_MODE", "debug"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBDatabase: getEnv("DB_DATABASE", "hostel_complaints"),
		DBUsername: getEnv("DB_USERNAME", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DebugSQL:   strings.ToLower(os.Getenv("DEBUG_SQL")) == "true",

		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24*7),

		UploadPath:    getEnv("UPLOAD_PATH", "./uploads/complaints"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "disk")),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3Prefix:      getEnv("S3_PREFIX", "complaints"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "hostel_complaints"),

		SentryDSN: os.Getenv("SENTRY_DSN"),

		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		RateLimitPerSec: getEnvInt("RATE_LIMIT_PER_SEC", 10),
		LogAccessToken:  os.Getenv("LOG_ACCESS_TOKEN"),
		MessageLanguage: getEnv("MESSAGE_LANGUAGE", "en"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		SMTP: loadSMTPConfig(),
	}
}

func (c *AppConfig) IsProduction() bool { return c.Environment == "production" }

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
