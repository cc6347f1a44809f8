package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port           string
	Environment    string
	MongoURI       string
	DBName         string
	JWTSecret      string
	TokenExpiry    time.Duration
	UploadDir      string
	MaxUploadBytes int64
	AllowedOrigins []string
	AppBaseURL     string
	RedisURL       string
	LogLevel       string
	SMTP           SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     string
	Sender   string
	Password string
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// LoadConfig reads the optional .env file and then the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, reading configuration from environment")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("APP_ENV", "development"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		DBName:         getEnv("MONGO_DB", "campus_connect"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me"),
		TokenExpiry:    getDuration("TOKEN_EXPIRY", 24*time.Hour),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: getInt64("MAX_UPLOAD_MB", 10) << 20,
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		AppBaseURL:     strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),
		RedisURL:       os.Getenv("REDIS_URL"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			Sender:   os.Getenv("SMTP_SENDER"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithField("key", key).Warn("Invalid duration, using default")
		return fallback
	}
	return d
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		logrus.WithField("key", key).Warn("Invalid number, using default")
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
