// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig holds all API-server settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds MongoDB settings
type DatabaseConfig struct {
	URI  string
	Name string
}

// UploaderConfig holds settings for the upload/proxy service
type UploaderConfig struct {
	Port      int
	Host      string
	ImagesDir string // Root directory for /images static files
	BaseURL   string // Public base URL returned in upload responses
	ProxyHost string // Only host allowed for /proxy targets
}

// AuthConfig holds token-signing settings
type AuthConfig struct {
	JWTSecret string
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Uploader       *UploaderConfig
	Auth           *AuthConfig
	UploaderURL    string // Where the API server reaches the uploader for cascade deletes
	AllowedOrigins []string
	Debug          bool
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// DefaultUploaderConfig provides default upload-service settings
func DefaultUploaderConfig() *UploaderConfig {
	return &UploaderConfig{
		Port:      8081,
		Host:      "0.0.0.0",
		ImagesDir: "images",
		BaseURL:   "",
		ProxyHost: "api.discogs.com",
	}
}

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	// Try to load .env from the working directory or the project root
	envLocations := []string{".env", "../../.env"}
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	serverConfig := DefaultConfig()
	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			serverConfig.Port = port
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}
	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := &DatabaseConfig{
		URI:  os.Getenv("MONGODB_URI"),
		Name: getEnvOrDefault("MONGODB_DATABASE", "groove_press"),
	}
	if dbConfig.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI environment variable is required")
	}

	uploaderConfig := LoadUploaderConfig()

	authConfig := &AuthConfig{
		JWTSecret: os.Getenv("JWT_SECRET"),
	}
	if authConfig.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	config := &Config{
		Server:         serverConfig,
		Database:       dbConfig,
		Uploader:       uploaderConfig,
		Auth:           authConfig,
		UploaderURL:    getEnvOrDefault("UPLOADER_URL", "http://localhost:8081"),
		AllowedOrigins: []string{"*"},
		Debug:          false,
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}
	if debug := os.Getenv("DEBUG"); debug == "true" {
		config.Debug = true
	}

	return config, nil
}

// LoadUploaderConfig loads only the upload-service settings. The uploader
// runs without MongoDB or token signing, so the variables LoadConfig
// requires are not needed here.
func LoadUploaderConfig() *UploaderConfig {
	envLocations := []string{".env", "../../.env"}
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			break
		}
	}

	uploaderConfig := DefaultUploaderConfig()
	if portStr := os.Getenv("UPLOADER_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			uploaderConfig.Port = port
		}
	}
	if host := os.Getenv("UPLOADER_HOST"); host != "" {
		uploaderConfig.Host = host
	}
	if dir := os.Getenv("UPLOADER_IMAGES_DIR"); dir != "" {
		uploaderConfig.ImagesDir = dir
	}
	if base := os.Getenv("UPLOADER_BASE_URL"); base != "" {
		uploaderConfig.BaseURL = base
	}
	if host := os.Getenv("PROXY_TARGET_HOST"); host != "" {
		uploaderConfig.ProxyHost = host
	}
	return uploaderConfig
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
