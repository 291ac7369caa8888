package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Ledger   LedgerConfig
	Vault    VaultConfig
	Insights InsightsConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type LedgerConfig struct {
	// PlatformSplitPercent is the default treasury share of the total
	// commission; the live value is read from system settings.
	PlatformSplitPercent int
	// OverdueSweepInterval controls how often PENDING sales past their
	// expected payout date are promoted to DUE.
	OverdueSweepInterval time.Duration
}

type VaultConfig struct {
	// Path of the durable snapshot file. Empty disables the vault.
	Path     string
	Debounce time.Duration
}

// InsightsConfig points at the external text-generation service used for
// offer analysis. Calls are advisory and time-bounded.
type InsightsConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8088"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "commish:commish@tcp(localhost:3306)/commish?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "commish",
		},
		Ledger: LedgerConfig{
			PlatformSplitPercent: getEnvInt("PLATFORM_SPLIT_PERCENT", 33),
			OverdueSweepInterval: time.Duration(getEnvInt("OVERDUE_SWEEP_MINUTES", 60)) * time.Minute,
		},
		Vault: VaultConfig{
			Path:     getEnv("VAULT_PATH", ""),
			Debounce: time.Duration(getEnvInt("VAULT_DEBOUNCE_SECONDS", 2)) * time.Second,
		},
		Insights: InsightsConfig{
			BaseURL: getEnv("INSIGHTS_BASE_URL", ""),
			APIKey:  getEnv("INSIGHTS_API_KEY", ""),
			Timeout: 5 * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
