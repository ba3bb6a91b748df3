package database

import (
	"fmt"
	"strings"

	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/config"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	// Driver specifies the database driver (postgres, sqlite)
	Driver string

	// PostgreSQL-specific configuration
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	// SQLite-specific configuration
	Path string
}

// FromAppConfig maps the application configuration to a DatabaseConfig
func FromAppConfig(cfg *config.Config) DatabaseConfig {
	return DatabaseConfig{
		Driver:   cfg.DBDriver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Path:     cfg.DBPath,
	}
}

// String returns a string representation with sensitive data masked
func (c *DatabaseConfig) String() string {
	return fmt.Sprintf("DatabaseConfig{Driver: %s, Host: %s, Port: %d, User: %s, Password: [REDACTED], Name: %s, SSLMode: %s, Path: %s}",
		c.Driver, c.Host, c.Port, c.User, c.Name, c.SSLMode, c.Path)
}

// IsPostgres reports whether the config targets a PostgreSQL server.
func (c *DatabaseConfig) IsPostgres() bool {
	d := strings.ToLower(c.Driver)
	return d == "postgres" || d == "postgresql"
}

// IsSQLite reports whether the config targets a local SQLite file.
// An empty driver defaults to SQLite.
func (c *DatabaseConfig) IsSQLite() bool {
	d := strings.ToLower(c.Driver)
	return d == "sqlite" || d == ""
}

// DSN builds a Data Source Name string based on the driver
func (c *DatabaseConfig) DSN() string {
	switch {
	case c.IsPostgres():
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
	case c.IsSQLite():
		return c.Path
	default:
		return ""
	}
}
