package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	JWTSecret   string
	MongoURI    string
	DBName      string
	SkipAuth    bool
	Environment string
	AppId       string

	// Storage the compiled report queries run against
	ReportDBDriver string // "postgres" or "mysql"
	ReportDBDSN    string

	ExecutionTimeout      time.Duration // default bound for on-demand runs
	MaxResultRows         int
	ScheduleSweepInterval time.Duration
	ScheduleRunTimeout    time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file successfully")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		JWTSecret:   getEnv("JWT_SECRET", "secret"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "go-broker"),
		SkipAuth:    getEnv("SKIP_AUTH", "false") == "true",
		Environment: getEnv("ENVIRONMENT", "development"),
		AppId:       getEnv("APP_ID", "go-broker"),

		ReportDBDriver: getEnv("REPORT_DB_DRIVER", "postgres"),
		ReportDBDSN:    getEnv("REPORT_DB_DSN", "host=localhost port=5432 user=broker dbname=broker sslmode=disable"),

		ExecutionTimeout:      getDuration("EXECUTION_TIMEOUT", 30*time.Second),
		MaxResultRows:         getInt("MAX_RESULT_ROWS", 10000),
		ScheduleSweepInterval: getDuration("SCHEDULE_SWEEP_INTERVAL", time.Minute),
		ScheduleRunTimeout:    getDuration("SCHEDULE_RUN_TIMEOUT", 10*time.Minute),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
	}, nil
}

// IsProduction reports whether the service runs with production logging and settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		log.Printf("Invalid duration for %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return v
}
