package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Application struct {
		Name        string
		Environment string
		Port        int
		Debug       bool
		Timeout     time.Duration
		BaseURL     string
	}

	PostgreSQL struct {
		DSN                   string
		MaxOpenConnections    int
		MaxIdleConnections    int
		ConnectionMaxLifetime int
	}

	Redis struct {
		Address  string
		Password string
		DB       int
	}

	Kafka struct {
		BootstrapServers string
		SASLUsername     string
		SASLPassword     string
	}

	JWT struct {
		PrivateKey []byte
		PublicKey  []byte
	}

	GCP struct {
		ProjectID      string
		ServiceAccount []byte
	}

	Storage struct {
		BasePath        string
		BaseURL         string
		DefaultLogoPath string
	}

	Notification struct {
		BaseURL string
		APIKey  string
	}

	Cache struct {
		TTL time.Duration
	}

	CORS struct {
		AllowedOrigins   []string
		AllowedMethods   []string
		AllowedHeaders   []string
		ExposedHeaders   []string
		MaxAge           int
		AllowCredentials bool
	}
}

var (
	c    *Config
	once sync.Once
)

func Get() *Config {
	once.Do(func() {
		c = &Config{}

		c.Application.Name = getString("APPLICATION_NAME", "tm-ticket")
		c.Application.Environment = getString("APPLICATION_ENVIRONMENT", "development")
		c.Application.Port = getInt("APPLICATION_PORT", 8080)
		c.Application.Debug = getBool("APPLICATION_DEBUG", false)
		c.Application.Timeout = time.Duration(getInt("APPLICATION_TIMEOUT_SECONDS", 30)) * time.Second
		c.Application.BaseURL = getString("APPLICATION_BASE_URL", "http://localhost:8080")

		c.PostgreSQL.DSN = getString("POSTGRESQL_DSN", "")
		c.PostgreSQL.MaxOpenConnections = getInt("POSTGRESQL_MAX_OPEN_CONNECTIONS", 25)
		c.PostgreSQL.MaxIdleConnections = getInt("POSTGRESQL_MAX_IDLE_CONNECTIONS", 5)
		c.PostgreSQL.ConnectionMaxLifetime = getInt("POSTGRESQL_CONNECTION_MAX_LIFETIME_SECONDS", 1800)

		c.Redis.Address = getString("REDIS_ADDRESS", "localhost:6379")
		c.Redis.Password = getString("REDIS_PASSWORD", "")
		c.Redis.DB = getInt("REDIS_DB", 0)

		c.Kafka.BootstrapServers = getString("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092")
		c.Kafka.SASLUsername = getString("KAFKA_SASL_USERNAME", "")
		c.Kafka.SASLPassword = getString("KAFKA_SASL_PASSWORD", "")

		c.JWT.PrivateKey = []byte(getString("JWT_PRIVATE_KEY", ""))
		c.JWT.PublicKey = []byte(getString("JWT_PUBLIC_KEY", ""))

		c.GCP.ProjectID = getString("GCP_PROJECT_ID", "")
		c.GCP.ServiceAccount = []byte(getString("GCP_SERVICE_ACCOUNT", ""))

		c.Storage.BasePath = getString("STORAGE_BASE_PATH", "./static")
		c.Storage.BaseURL = getString("STORAGE_BASE_URL", "http://localhost:8080/static/")
		c.Storage.DefaultLogoPath = getString("STORAGE_DEFAULT_LOGO_PATH", "assets/default_logo.png")

		c.Notification.BaseURL = getString("NOTIFICATION_BASE_URL", "")
		c.Notification.APIKey = getString("NOTIFICATION_API_KEY", "")

		c.Cache.TTL = time.Duration(getInt("CACHE_TTL_SECONDS", 3600)) * time.Second

		c.CORS.AllowedOrigins = getSlice("CORS_ALLOWED_ORIGINS", "*")
		c.CORS.AllowedMethods = getSlice("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")
		c.CORS.AllowedHeaders = getSlice("CORS_ALLOWED_HEADERS", "Authorization,Content-Type")
		c.CORS.ExposedHeaders = getSlice("CORS_EXPOSED_HEADERS", "X-Trace-Id")
		c.CORS.MaxAge = getInt("CORS_MAX_AGE", 300)
		c.CORS.AllowCredentials = getBool("CORS_ALLOW_CREDENTIALS", true)
	})

	return c
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return fallback
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}

	return n
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}

	return b
}

func getSlice(key, fallback string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		v = fallback
	}

	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}
