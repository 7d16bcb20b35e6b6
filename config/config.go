package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port string

	DBURL string

	JWTSecret          string
	AccessExpiryMin    int
	RefreshExpiryHours int

	LoginMaxAttempts int
	LockoutMinutes   int

	LoginRatePerMin   int
	GeneralRatePerMin int

	SweepIntervalMin int

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	SentryDSN string
}

// Load reads the environment (plus an optional .env file) and validates it.
// Validation failures are fatal by contract: the service must not accept
// traffic with a weak signing secret or a default admin password.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DBURL:              os.Getenv("DB_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessExpiryMin:    getEnvAsInt("ACCESS_TOKEN_EXPIRY_MIN", 15),
		RefreshExpiryHours: getEnvAsInt("REFRESH_TOKEN_EXPIRY_HOURS", 168),
		LoginMaxAttempts:   getEnvAsInt("LOGIN_MAX_ATTEMPTS", 10),
		LockoutMinutes:     getEnvAsInt("LOGIN_LOCKOUT_MINUTES", 5),
		LoginRatePerMin:    getEnvAsInt("RATE_LIMIT_LOGIN_PER_MIN", 5),
		GeneralRatePerMin:  getEnvAsInt("RATE_LIMIT_GENERAL_PER_MIN", 100),
		SweepIntervalMin:   getEnvAsInt("TOKEN_SWEEP_INTERVAL_MIN", 360),
		AdminUsername:      getEnv("ADMIN_USERNAME", ""),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		SentryDSN:          getEnv("SENTRY_DSN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var placeholderSecrets = []string{"your-secret-key-here", "changeme", "secret"}

var weakAdminPasswords = []string{"admin", "password", "123456"}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBURL) == "" {
		return fmt.Errorf("config: DB_URL is not set")
	}

	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" {
		return fmt.Errorf("config: JWT_SECRET is not set")
	}
	if len(secret) < 64 {
		return fmt.Errorf("config: JWT_SECRET is too short (%d characters, minimum 64)", len(secret))
	}
	for _, p := range placeholderSecrets {
		if secret == p {
			return fmt.Errorf("config: JWT_SECRET must be changed from the default value")
		}
	}

	// Admin bootstrap credentials are optional, but if supplied they must
	// come as a pair and the password must not be a known weak value.
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return fmt.Errorf("config: ADMIN_USERNAME and ADMIN_PASSWORD are required together")
	}
	if c.AdminPassword != "" {
		if len(c.AdminPassword) < 8 {
			return fmt.Errorf("config: ADMIN_PASSWORD is too short (minimum 8 characters)")
		}
		for _, p := range weakAdminPasswords {
			if c.AdminPassword == p {
				return fmt.Errorf("config: ADMIN_PASSWORD is too weak")
			}
		}
	}

	if c.AccessExpiryMin <= 0 || c.RefreshExpiryHours <= 0 {
		return fmt.Errorf("config: token lifetimes must be positive")
	}
	if c.LoginMaxAttempts <= 0 || c.LockoutMinutes <= 0 {
		return fmt.Errorf("config: lockout policy values must be positive")
	}
	if c.LoginRatePerMin <= 0 || c.GeneralRatePerMin <= 0 {
		return fmt.Errorf("config: rate limit ceilings must be positive")
	}

	return nil
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
