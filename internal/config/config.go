// Package config reads service settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string
	LogLevel       string
	LogConsole     bool
	RequestTimeout time.Duration

	DBDriver    string
	DBPath      string
	DatabaseURL string
	CatalogCSV  string

	GoogleAPIKey         string
	GoogleBaseURL        string
	GeocodeRatePerMinute int
	GeocodeLRUSize       int

	RedisAddr     string
	RouteCacheTTL time.Duration

	VehicleRangeMiles float64
	VehicleMPG        float64
	SearchRadiusMiles float64
	PurchaseGallons   float64
	H3Resolution      int

	Kafka KafkaConfig
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

// Load reads a .env file if present. It reports whether one was found;
// a missing file is not an error.
func Load() bool {
	return godotenv.Load() == nil
}

func FromEnv() Config {
	return Config{
		Addr:           Get("ADDR", ":8080"),
		LogLevel:       Get("LOG_LEVEL", "info"),
		LogConsole:     GetBool("LOG_CONSOLE", false),
		RequestTimeout: GetDuration("REQUEST_TIMEOUT", 60*time.Second),

		DBDriver:    strings.ToLower(Get("DB_DRIVER", "sqlite")),
		DBPath:      Get("DB_PATH", "data/app.db"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CatalogCSV:  Get("CATALOG_CSV", "data/fuel-prices.csv"),

		GoogleAPIKey:         os.Getenv("GOOGLE_API_KEY"),
		GoogleBaseURL:        Get("GOOGLE_BASE_URL", "https://maps.googleapis.com/maps/api"),
		GeocodeRatePerMinute: GetInt("GEOCODE_RATE_PER_MINUTE", 60),
		GeocodeLRUSize:       GetInt("GEOCODE_LRU_SIZE", 4096),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RouteCacheTTL: GetDuration("ROUTE_CACHE_TTL", 24*time.Hour),

		VehicleRangeMiles: GetFloat("VEHICLE_RANGE_MILES", 500),
		VehicleMPG:        GetFloat("VEHICLE_MPG", 10),
		SearchRadiusMiles: GetFloat("SEARCH_RADIUS_MILES", 10),
		PurchaseGallons:   GetFloat("PURCHASE_GALLONS", 10),
		H3Resolution:      GetInt("H3_RESOLUTION", 5),

		Kafka: KafkaConfig{
			Enabled: GetBool("KAFKA_ENABLED", false),
			Brokers: splitCSV(Get("KAFKA_BROKERS", "localhost:9092")),
			Topic:   Get("KAFKA_TOPIC", "station-catalog"),
			GroupID: Get("KAFKA_GROUP_ID", "fuel-stop-service"),
		},
	}
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func GetFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return fallback
}

func GetBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return fallback
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
