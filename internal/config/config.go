package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the full configuration surface of the backend. It is built
// once at startup and passed explicitly; nothing reads the environment after
// Load returns.
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string // empty disables auth on mutating endpoints

	SampleRateHz  float64 // informational, not used in segmentation math
	WindowSeconds float64
	StrideSeconds float64
}

// Load reads configuration from the environment, applying defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/fall/fall.db"
	}

	return &Config{
		Port:          port,
		DBPath:        dbPath,
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SampleRateHz:  envFloat("SAMPLE_RATE_HZ", 18.0), // UP-Fall wearable ~18 Hz
		WindowSeconds: envFloat("WINDOW_SECONDS", 2.56), // common HAR window
		StrideSeconds: envFloat("STRIDE_SECONDS", 0.50),
	}
}

// Validate rejects configurations that would make the windowing engine
// produce zero or infinitely many windows. Called before any I/O.
func (c *Config) Validate() error {
	if c.WindowSeconds <= 0 {
		return fmt.Errorf("WINDOW_SECONDS must be positive, got %v", c.WindowSeconds)
	}
	if c.StrideSeconds <= 0 {
		return fmt.Errorf("STRIDE_SECONDS must be positive, got %v", c.StrideSeconds)
	}
	if c.SampleRateHz <= 0 {
		return fmt.Errorf("SAMPLE_RATE_HZ must be positive, got %v", c.SampleRateHz)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	return nil
}

func envFloat(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}
