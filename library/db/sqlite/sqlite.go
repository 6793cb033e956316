// Package sqlite opens the single-file SQLite store through gorm.
package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	_ "github.com/mattn/go-sqlite3"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const (
	// DriverPure is the pure-Go driver. FTS5 is always compiled in.
	DriverPure = "sqlite"
	// DriverCgo is the cgo driver; FTS5 needs the sqlite_fts5 build tag.
	DriverCgo = "sqlite3"

	busyTimeoutMillis = 5000
)

// DialInfo describes how to open the store file.
type DialInfo struct {
	Path   string
	Driver string
	// Debug logs every SQL statement.
	Debug bool
}

// NormalizeDriver maps configuration values onto a registered driver name.
func NormalizeDriver(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "sqlite", "pure", "modernc":
		return DriverPure, nil
	case "sqlite3", "cgo", "mattn":
		return DriverCgo, nil
	default:
		return "", errors.Errorf("unsupported sqlite driver %q", raw)
	}
}

// BuildDSN returns a DSN enabling WAL, a busy timeout and foreign keys for the driver.
func BuildDSN(dialInfo DialInfo) string {
	if dialInfo.Driver == DriverCgo {
		return "file:" + dialInfo.Path +
			"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}
	return "file:" + dialInfo.Path +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Open creates the parent directory when needed and opens the store.
func Open(ctx context.Context, dialInfo DialInfo, logger logSDK.Logger) (*gorm.DB, error) {
	driver, err := NormalizeDriver(dialInfo.Driver)
	if err != nil {
		return nil, err
	}
	dialInfo.Driver = driver

	if strings.TrimSpace(dialInfo.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if dir := filepath.Dir(dialInfo.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create store directory %s", dir)
		}
	}

	db, err := gorm.Open(gormSqlite.New(gormSqlite.Config{
		DriverName: driver,
		DSN:        BuildDSN(dialInfo),
	}), &gorm.Config{
		Logger: NewGormLogger(logger, dialInfo.Debug),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open sqlite %s", dialInfo.Path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db")
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(8)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err = sqlDB.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping sqlite")
	}

	logger.Info("sqlite store opened",
		zap.String("path", dialInfo.Path),
		zap.String("driver", driver),
		zap.Int("busy_timeout_ms", busyTimeoutMillis),
	)
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}
	return errors.WithStack(sqlDB.Close())
}
