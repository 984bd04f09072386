package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
)

// ErrNoDSN is returned when the connection string is missing.
var ErrNoDSN = errors.New("DB_DSN is empty (check your .env)")

// Open connects to Postgres using the given DSN.
func Open(dsn string, logger zerolog.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}
	db, err := gorm.Open(postgres.Open(dsn), Config(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Config is the gorm configuration shared by Postgres and the test database.
// Order items reference either orders or pedidos, so no foreign keys are
// generated by migrations; referential integrity for them is kept by the
// orders store.
func Config(logger zerolog.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: gormlogger.New(zerologWriter{logger}, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// Migrate creates or updates every table. Legacy order tables (pedidos and
// friends) share the orders schema and are created too.
func Migrate(db *gorm.DB, orderTables ...string) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}
	for _, table := range orderTables {
		if table == "" || table == "orders" {
			continue
		}
		if err := db.Table(table).AutoMigrate(&models.Order{}); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}

// Ping checks the underlying connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type zerologWriter struct {
	logger zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...any) {
	w.logger.Warn().Str("component", "gorm").Msgf(format, args...)
}
