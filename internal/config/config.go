package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Port int    `json:"port"`
	Host string `json:"host"`
	Env  string `json:"env"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBHost     string `json:"db_host"`
	DBPort     int    `json:"db_port"`
	DBName     string `json:"db_name"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBSSLMode  string `json:"db_sslmode"`
	DBPath     string `json:"db_path"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	JWTSecret string `json:"jwt_secret"`

	// Cake builder configuration
	CakeBasePriceCLP int64 `json:"cake_base_price_clp"`

	// Messaging configuration
	RabbitMQURL         string `json:"rabbitmq_url"`
	OrderEventsExchange string `json:"order_events_exchange"`

	// Bootstrap admin account
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Port: %d, Host: %s, Env: %s, DBDriver: %s, DBHost: %s, DBPort: %d, DBName: %s, DBUser: %s, DBPassword: [REDACTED], LogLevel: %s, JWTSecret: [REDACTED], CakeBasePriceCLP: %d, RabbitMQURL: %s, OrderEventsExchange: %s}",
		c.Port, c.Host, c.Env, c.DBDriver, c.DBHost, c.DBPort, c.DBName, c.DBUser, c.LogLevel, c.CakeBasePriceCLP, maskAMQPURL(c.RabbitMQURL), c.OrderEventsExchange)
}

// maskAMQPURL masks the password in an AMQP connection URL
func maskAMQPURL(amqpURL string) string {
	if amqpURL == "" {
		return ""
	}

	parsed, err := url.Parse(amqpURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// Returns an error if any required environment variable is missing or invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, err
	}

	driver := GetEnvWithDefault("DB_DRIVER", "sqlite")
	if driver != "sqlite" && driver != "postgres" {
		return nil, errors.New("DB_DRIVER must be either sqlite or postgres")
	}

	config := &Config{
		Port:                port,
		Host:                GetEnvWithDefault("APP_HOST", "localhost"),
		Env:                 GetEnvWithDefault("APP_ENV", "development"),
		DBDriver:            driver,
		DBHost:              GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:              GetEnvAsType("DB_PORT", 5432),
		DBName:              GetEnvWithDefault("DB_NAME", "dulcemaria"),
		DBUser:              GetEnvWithDefault("DB_USER", "dulcemaria"),
		DBPassword:          GetEnvWithDefault("DB_PASSWORD", "dulcemaria"),
		DBSSLMode:           GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:              GetEnvWithDefault("DB_PATH", "dulcemaria.db"),
		LogLevel:            GetEnvWithDefault("LOG_LEVEL", "info"),
		JWTSecret:           GetEnvWithDefault("JWT_SECRET", "secret"),
		CakeBasePriceCLP:    int64(GetEnvAsType("CAKE_BASE_PRICE_CLP", 30000)),
		RabbitMQURL:         GetEnvWithDefault("RABBITMQ_URL", ""),
		OrderEventsExchange: GetEnvWithDefault("ORDER_EVENTS_EXCHANGE", "order.events"),
		AdminEmail:          GetEnvWithDefault("ADMIN_EMAIL", ""),
		AdminPassword:       GetEnvWithDefault("ADMIN_PASSWORD", ""),
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Warnf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
