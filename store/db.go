package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tppcore/modbot/models"
)

// Opens a database from a URL: "sqlite://path", "sqlite=path", "postgres://..." or
// "postgres=dsn". sqlite is limited to a single open connection.
func SetupDatabase(dburl string, maxConnections int, logger *slog.Logger) (*gorm.DB, error) {
	var dial gorm.Dialector

	isSqlite := false
	openConns := maxConnections
	if strings.HasPrefix(dburl, "sqlite://") || strings.HasPrefix(dburl, "sqlite=") {
		sqliteSuffix := strings.TrimPrefix(strings.TrimPrefix(dburl, "sqlite://"), "sqlite=")
		// if this isn't an in-memory database, ensure that directory exists (eg, if db
		// file is being initialized)
		if !strings.Contains(sqliteSuffix, ":memory:") {
			if err := os.MkdirAll(filepath.Dir(sqliteSuffix), os.ModePerm); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dial = sqlite.Open(sqliteSuffix)
		openConns = 1
		isSqlite = true
	} else if strings.HasPrefix(dburl, "postgresql://") || strings.HasPrefix(dburl, "postgres://") {
		// can pass entire URL, with prefix, to gorm driver
		dial = postgres.Open(dburl)
	} else if strings.HasPrefix(dburl, "postgres=") {
		dial = postgres.Open(dburl[len("postgres="):])
	} else {
		// not echoing the value, it may contain a password
		return nil, fmt.Errorf("unsupported or unrecognized database URL scheme")
	}

	if logger == nil {
		logger = slog.Default()
	}
	gormLogger := slogGorm.New(slogGorm.WithLogger(logger))

	db, err := gorm.Open(dial, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqldb, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxIdleConns(openConns)
	sqldb.SetMaxOpenConns(openConns)
	sqldb.SetConnMaxIdleTime(time.Hour)

	if isSqlite {
		// Set pragmas for sqlite
		if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
			return nil, err
		}
		if err := db.Exec("PRAGMA synchronous=normal;").Error; err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Creates or updates all tables used by the bot.
func MigrateDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.ModLog{}); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}
