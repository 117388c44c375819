// Package sqlite is the embedded single-file store, backed by GORM over a
// pure-Go SQLite driver. It is the default for small deployments.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"telegram-support-relay/internal/domain"
	"telegram-support-relay/internal/domain/ports/repository"
	"telegram-support-relay/internal/infra/metrics"
)

// PRAGMAs go in the DSN so every pooled connection gets them.
const pragmaDSN = "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// gormLogWriter routes GORM's own logging into zerolog.
type gormLogWriter struct{ log *zerolog.Logger }

func (w gormLogWriter) Printf(format string, args ...interface{}) {
	w.log.Warn().Str("component", "gorm").Msgf(format, args...)
}

// OpenSQLite opens (or creates) the database file, applies PRAGMAs and
// migrates the schema.
func OpenSQLite(path string, maxConns int, log *zerolog.Logger) (*gorm.DB, error) {
	// Fail early if parent directory does not exist.
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	db, err := gorm.Open(sqlite.Open(path+pragmaDSN), &gorm.Config{
		Logger: logger.New(gormLogWriter{log: log}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if maxConns <= 0 {
		maxConns = 10
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(maxConns)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRow{}, &correlationRow{})
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReportPoolStats publishes pool gauges until ctx is done.
func ReportPoolStats(ctx context.Context, db *gorm.DB, every time.Duration) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s := sqlDB.Stats()
			metrics.SetDBPoolStats("sqlite", int32(s.OpenConnections), int32(s.Idle), int32(s.InUse))
		}
	}
}

// conn picks the caller's transaction when one is passed.
func conn(ctx context.Context, db *gorm.DB, tx repository.Tx) (*gorm.DB, error) {
	switch v := tx.(type) {
	case *gorm.DB:
		return v.WithContext(ctx), nil
	case nil:
		if db == nil {
			return nil, domain.ErrInvalidArgument
		}
		return db.WithContext(ctx), nil
	default:
		return nil, domain.ErrInvalidExecContext
	}
}
