package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

const (
	MediaSupabase   = "supabase"
	MediaCloudinary = "cloudinary"

	defaultTileURL     = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	defaultAttribution = "&copy; OpenStreetMap contributors"
	defaultLat         = -34.6037
	defaultLng         = -58.3816
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	StorageBucket     string

	MongoDBURI      string
	MongoDBPassword string
	MongoDBDatabase string

	RedisURL string

	KafkaBrokers []string
	KafkaTopic   string

	GeocoderURL       string
	GeocoderUserAgent string

	MediaBackend        string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	CORSOrigins []string

	MapTileURL     string
	MapAttribution string
	DefaultLat     float64
	DefaultLng     float64
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),

		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_URL_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		StorageBucket:     getEnvWithDefault("STORAGE_BUCKET", "space-images"),

		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoDBDatabase: getEnvWithDefault("MONGODB_DATABASE", "rentyclub"),

		RedisURL: os.Getenv("REDIS_URL"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnvWithDefault("KAFKA_TOPIC", "rentyclub.bookings"),

		GeocoderURL:       getEnvWithDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderUserAgent: getEnvWithDefault("GEOCODER_USER_AGENT", "rentyclub-api/1.0"),

		MediaBackend:        strings.ToLower(getEnvWithDefault("MEDIA_BACKEND", MediaSupabase)),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		CORSOrigins: splitList(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),

		MapTileURL:     getEnvWithDefault("MAP_TILE_URL", defaultTileURL),
		MapAttribution: getEnvWithDefault("MAP_ATTRIBUTION", defaultAttribution),
	}

	var err error
	if cfg.DefaultLat, err = getFloatWithDefault("DEFAULT_LAT", defaultLat); err != nil {
		return nil, err
	}
	if cfg.DefaultLng, err = getFloatWithDefault("DEFAULT_LNG", defaultLng); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL_ANON_KEY is required")
	}
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if strings.Contains(cfg.MongoDBURI, "<password>") && cfg.MongoDBPassword == "" {
		return nil, fmt.Errorf("MONGODB_PASSWORD is required when MONGODB_URI has a <password> placeholder")
	}
	switch cfg.MediaBackend {
	case MediaSupabase:
	case MediaCloudinary:
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			return nil, fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required for the cloudinary media backend")
		}
	default:
		return nil, fmt.Errorf("MEDIA_BACKEND must be %q or %q", MediaSupabase, MediaCloudinary)
	}
	if cfg.DefaultLat < -90 || cfg.DefaultLat > 90 || cfg.DefaultLng < -180 || cfg.DefaultLng > 180 {
		return nil, fmt.Errorf("DEFAULT_LAT/DEFAULT_LNG out of range")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFloatWithDefault(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %v", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
