package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	DBDriver   string // sqlite or postgres
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	DispatchWebhookURL string
	DeliveryTimeout    time.Duration

	Pacing        string // fixed, token_bucket, none
	PaceInterval  time.Duration
	RatePerSec    float64
	RateBurst     int
	FailurePolicy string // isolate or abort

	// DevFallback synthesizes placeholder contacts when the clients table has no
	// eligible rows. Keep it off in production.
	DevFallback     bool
	DevFallbackSize int

	// CSVEligibleOnly drops CSV rows whose status is not the eligibility sentinel.
	CSVEligibleOnly bool

	AttachmentBaseURL string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:     getEnv("DB_PATH", "./contacts.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "postgres"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DispatchWebhookURL: getEnv("DISPATCH_WEBHOOK_URL", ""),
		DeliveryTimeout:    getDuration("DELIVERY_TIMEOUT", 10*time.Second),

		Pacing:        strings.ToLower(getEnv("PACING", "fixed")),
		PaceInterval:  getDuration("PACE_INTERVAL", 300*time.Millisecond),
		RatePerSec:    getFloat("RATE_PER_SEC", 3),
		RateBurst:     getInt("RATE_BURST", 1),
		FailurePolicy: strings.ToLower(getEnv("FAILURE_POLICY", "isolate")),

		DevFallback:     getBool("DEV_FALLBACK", false),
		DevFallbackSize: getInt("DEV_FALLBACK_SIZE", 15),

		CSVEligibleOnly: getBool("CSV_ELIGIBLE_ONLY", false),

		AttachmentBaseURL: strings.TrimRight(getEnv("ATTACHMENT_BASE_URL", ""), "/"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return b
}
