package config

import (
	"os"
	"strconv"
	"time"

	"courtbook/internal/directory"
	"courtbook/internal/messaging"
	"courtbook/internal/tokenstore"
	"courtbook/internal/upstream"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	Backend   upstream.Config
	Directory directory.Config
	NATS      messaging.Config
	Valkey    tokenstore.Config
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8082"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Backend: upstream.Config{
			BaseURL: getEnv("BACKEND_API_URL", "http://api.tennisbook.mz-akbar.online/api"),
			Timeout: time.Duration(getEnvInt("BACKEND_TIMEOUT_SEC", 30)) * time.Second,
		},

		Directory: directory.Config{
			FreshFor:  time.Duration(getEnvInt("DIRECTORY_FRESH_SEC", 60)) * time.Second,
			RetainFor: time.Duration(getEnvInt("DIRECTORY_RETAIN_SEC", 300)) * time.Second,
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", ""),
			ClusterID: getEnv("NATS_CLUSTER_ID", "courtbook"),
			ClientID:  getEnv("NATS_CLIENT_ID", "courtbook-api"),
		},

		Valkey: tokenstore.Config{
			Addr:     getEnv("VALKEY_ADDR", ""),
			Password: getEnv("VALKEY_PASSWORD", ""),
			Key:      getEnv("VALKEY_TOKEN_KEY", "courtbook:auth:token"),
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
