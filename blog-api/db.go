package main

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// connectDB opens SQLite at cfg.Path, or Postgres when cfg.Host is set.
func connectDB(cfg DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var db *gorm.DB
	var err error
	if cfg.Host == "" {
		logger.WithFields(logrus.Fields{"path": cfg.Path}).Info("Connecting to SQLite database")
		db, err = gorm.Open(sqlite.Open(sqliteDSN(cfg.Path)), gormConfig)
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				return nil, dbErr
			}
			// SQLite allows a single writer.
			sqlDB.SetMaxOpenConns(1)
		}
	} else {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		logger.WithFields(logrus.Fields{"host": cfg.Host}).Info("Connecting to PostgreSQL database")
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	}

	if err != nil {
		logger.WithError(err).Error("Failed to connect to the database")
		return nil, err
	}

	logger.Info("Database connection successful")
	return db, nil
}

// initDB creates the user, post and like tables if they are missing.
// sqliteDSN appends the connection options to path, which may already carry
// its own query string. Foreign keys are off by default in SQLite and
// cascades depend on them.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func initDB(db *gorm.DB) error {
	schema := sqliteSchema
	if db.Dialector.Name() == "postgres" {
		schema = postgresSchema
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}

	logger.WithField("dialect", db.Dialector.Name()).Info("Database schema ready")
	return nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close database")
	}
}
