// Package config provides configuration management for the reviewboard
// application. Values are read from environment variables, with support for
// required variables, defaults, and collective error reporting so that all
// configuration problems surface at once on startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds configuration for the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	MaxSize  int
}

// SessionConfig holds cookie-session configuration.
type SessionConfig struct {
	// TTL is the lifetime of a session row and its cookie.
	TTL time.Duration
	// CookieSecure marks the session cookie Secure; disable for local dev.
	CookieSecure bool
}

// PolicyConfig holds the input policies enforced by the validators.
type PolicyConfig struct {
	PasswordMinLength int
	AgeMin            int
	AgeMax            int
	RatingMin         int
	RatingMax         int
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	// LoginRatePerSec and LoginBurst bound login attempts per client IP.
	LoginRatePerSec float64
	LoginBurst      int
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DB      *DatabaseConfig
	Session *SessionConfig
	Policy  *PolicyConfig
	Server  *ServerConfig
}

// getRequiredEnv reads a required environment variable, collecting an error
// when it is missing.
func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv reads an optional environment variable with a default.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvInt reads an optional integer environment variable. The
// default is used when the variable is unset; a parse failure is collected.
func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

// getOptionalEnvBool reads an optional boolean environment variable.
func getOptionalEnvBool(key string, defaultValue bool, errs *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueBool, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected boolean, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueBool
}

// getOptionalEnvDuration reads an optional duration environment variable
// (e.g. "15m", "168h").
func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize validates a pool size and clamps it to [5, 100], collecting
// an error when clamping was necessary.
func clampPoolSize(size int, varName string, errs *[]string) int {
	if size < 5 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is less than minimum 5, clamping to 5", varName, size))
		return 5
	}
	if size > 100 {
		*errs = append(*errs, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100, clamping to 100", varName, size))
		return 100
	}
	return size
}

// LoadConfig builds an AppConfig from environment variables. All errors
// encountered while loading are collected and returned as a single error.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	dbUser := getRequiredEnv("DB_USER", &errs)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errs)
	dbName := getRequiredEnv("DB_NAME", &errs)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errs)
	poolSize := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errs), "DB_POOL_SIZE", &errs)

	dbConfig := &DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
		MaxSize:  poolSize,
	}

	sessionConfig := &SessionConfig{
		TTL:          getOptionalEnvDuration("SESSION_TTL", 168*time.Hour, &errs), // 7 days
		CookieSecure: getOptionalEnvBool("SESSION_COOKIE_SECURE", true, &errs),
	}

	policyConfig := &PolicyConfig{
		PasswordMinLength: getOptionalEnvInt("PASSWORD_MIN_LENGTH", 8, &errs),
		AgeMin:            getOptionalEnvInt("AGE_MIN", 13, &errs),
		AgeMax:            getOptionalEnvInt("AGE_MAX", 120, &errs),
		RatingMin:         getOptionalEnvInt("RATING_MIN", 1, &errs),
		RatingMax:         getOptionalEnvInt("RATING_MAX", 5, &errs),
	}
	if policyConfig.AgeMin > policyConfig.AgeMax {
		errs = append(errs, fmt.Sprintf("AGE_MIN (%d) must not exceed AGE_MAX (%d)", policyConfig.AgeMin, policyConfig.AgeMax))
	}
	if policyConfig.RatingMin > policyConfig.RatingMax {
		errs = append(errs, fmt.Sprintf("RATING_MIN (%d) must not exceed RATING_MAX (%d)", policyConfig.RatingMin, policyConfig.RatingMax))
	}

	serverConfig := &ServerConfig{
		Port:            getOptionalEnv("PORT", "8080"),
		LoginRatePerSec: float64(getOptionalEnvInt("LOGIN_RATE_PER_MIN", 30, &errs)) / 60.0,
		LoginBurst:      getOptionalEnvInt("LOGIN_BURST", 10, &errs),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		DB:      dbConfig,
		Session: sessionConfig,
		Policy:  policyConfig,
		Server:  serverConfig,
	}, nil
}
