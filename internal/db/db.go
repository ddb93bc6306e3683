// Package db opens the database connection pool and owns the schema.
package db

import (
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/diewo77/viajante/internal/config"
	"github.com/diewo77/viajante/internal/logging"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// sqliteDriverName is go-sqlite3 with the extra SQL functions the
// analytical queries need.
const sqliteDriverName = "sqlite3_viajante"

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

var registerOnce sync.Once

func registerSQLiteDriver() {
	registerOnce.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("log10", sqliteLog10, true)
			},
		})
	})
}

// sqliteLog10 mirrors PostgreSQL's LOG for positive input and yields NULL
// otherwise.
func sqliteLog10(v any) any {
	var x float64
	switch n := v.(type) {
	case int64:
		x = float64(n)
	case float64:
		x = n
	default:
		return nil
	}
	if x <= 0 {
		return nil
	}
	return math.Log10(x)
}

// Open connects to the configured database, retrying a few times to let a
// freshly started PostgreSQL accept connections, and applies pool limits.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := NormalizeDSN(cfg.DSN())
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}
	logging.Info().Str("dsn", MaskDSN(dsn)).Msg("connecting to database")

	var conn *gorm.DB
	var err error
	for i := 1; i <= connectAttempts; i++ {
		conn, err = open(dsn, cfg.Debug)
		if err == nil {
			break
		}
		logging.Warn().Err(err).Int("attempt", i).Msg("database connection failed")
		if i < connectAttempts {
			time.Sleep(connectBackoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", connectAttempts, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if err := conn.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return conn, nil
}

// OpenSQLite opens a sqlite database (file path or "file:" URI) with the
// extra SQL functions registered. Tests use it with in-memory DSNs.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	return open("sqlite:"+dsn, false)
}

func open(dsn string, debug bool) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:                                   logging.GormLogger(debug),
		DisableForeignKeyConstraintWhenMigrating: true,
	}
	if IsSQLite(dsn) {
		registerSQLiteDriver()
		return gorm.Open(sqlite.New(sqlite.Config{
			DriverName: sqliteDriverName,
			DSN:        sqlitePath(dsn),
		}), gcfg)
	}
	return gorm.Open(postgres.Open(dsn), gcfg)
}
