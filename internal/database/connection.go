package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

const connectAttempts = 5

// InitDatabase opens the store shared by the catalog, customers, orders
// and cake quotes. PostgreSQL connections are retried with exponential
// backoff because the portal regularly starts before its database
// container is ready; a local SQLite file either opens or it does not,
// so it gets a single attempt.
func InitDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	if !cfg.IsPostgres() && !cfg.IsSQLite() {
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", cfg.Driver)
	}

	attempts := connectAttempts
	if cfg.IsSQLite() {
		attempts = 1
	}

	log.WithFields(logrus.Fields{
		"db_driver": cfg.Driver,
		"db_host":   cfg.Host,
		"db_name":   cfg.Name,
		"db_path":   cfg.Path,
	}).Info("Opening bakery database")

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := openConnection(cfg)
		if err == nil {
			log.WithFields(logrus.Fields{
				"db_driver": cfg.Driver,
				"attempt":   attempt,
			}).Info("Database ready")
			return db, nil
		}
		lastErr = err
		log.WithFields(logrus.Fields{
			"attempt":      attempt,
			"max_attempts": attempts,
			"error":        err.Error(),
		}).Warn("Database connection failed")

		if attempt < attempts {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			log.WithField("backoff", backoff).Info("Retrying database connection")
			time.Sleep(backoff)
		}
	}

	return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}

// openConnection dials the configured backend once and verifies it with
// a ping before handing the pool over to tunePool.
func openConnection(cfg DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if cfg.IsPostgres() {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.DSN()), &gorm.Config{})
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	tunePool(sqlDB, cfg)
	return db, nil
}

// tunePool sizes the pool for the deployment shape. The Postgres portal
// serves concurrent admin and storefront traffic; SQLite is a
// single-writer development store, so one connection avoids lock
// contention on the file.
func tunePool(sqlDB *sql.DB, cfg DatabaseConfig) {
	if cfg.IsSQLite() {
		sqlDB.SetMaxOpenConns(1)
		return
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	log.WithFields(logrus.Fields{
		"max_open_conns":    25,
		"max_idle_conns":    5,
		"conn_max_lifetime": "5m",
	}).Debug("Connection pool configured")
}
