package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Admin    AdminConfig
	Call     CallConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AdminConfig struct {
	Email      string
	Password   string
	SessionTTL time.Duration
}

type CallConfig struct {
	RingDelay          time.Duration
	FeedbackResetDelay time.Duration
	VoiceLocale        string
	RingtoneURL        string
}

type AppConfig struct {
	Environment   string
	Version       string
	DataDir       string
	CanonicalHost string
	SyncSchedule  string
	AllowOrigins  []string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DB_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			Email:      getEnv("ADMIN_EMAIL", ""),
			Password:   getEnv("ADMIN_PASSWORD", ""),
			SessionTTL: getEnvAsSeconds("ADMIN_SESSION_TTL_SECONDS", 12*60*60),
		},
		Call: CallConfig{
			RingDelay:          getEnvAsMillis("CALL_RING_DELAY_MS", 2500),
			FeedbackResetDelay: getEnvAsMillis("CALL_FEEDBACK_RESET_DELAY_MS", 1500),
			VoiceLocale:        getEnv("CALL_VOICE_LOCALE", "pt"),
			RingtoneURL:        getEnv("CALL_RINGTONE_URL", "/assets/ringtone.mp3"),
		},
		App: AppConfig{
			Environment:   getEnv("APP_ENV", "development"),
			Version:       getEnv("APP_VERSION", "1.0.0"),
			DataDir:       getEnv("DATA_DIR", "data"),
			CanonicalHost: getEnv("CANONICAL_HOST", ""),
			SyncSchedule:  getEnv("SYNC_SCHEDULE", ""),
			AllowOrigins:  []string{getEnv("CORS_ORIGIN", "*")},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RemoteConfigured reports whether the remote row store backs the project
// store. Decided once at startup; the store never switches backend mid-run.
func (c *Config) RemoteConfigured() bool {
	return c.Database.DSN != ""
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.App.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}

	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsMillis(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Millisecond
}

func getEnvAsSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getEnvAsInt(key, defaultValue)) * time.Second
}
