package clients

import (
	"database/sql"
	"fmt"
	"strings"

	"account-admin-svc/src/internal/config"
	"account-admin-svc/src/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// Database backends selected from the connection string scheme.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

func Backend(url string) string {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return BackendPostgres
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return BackendMongo
	default:
		return BackendSQLite
	}
}

// SQLiteDSN accepts plain paths, file: URIs, :memory: and sqlite:/// URLs.
func SQLiteDSN(url string) string {
	switch {
	case strings.HasPrefix(url, "sqlite:///"):
		return strings.TrimPrefix(url, "sqlite:///")
	case strings.HasPrefix(url, "sqlite://"):
		return strings.TrimPrefix(url, "sqlite://")
	default:
		return url
	}
}

// NewDatabase opens a bun database for the SQLite or PostgreSQL backend.
func NewDatabase(cfg *config.Database) (*bun.DB, error) {
	var db *bun.DB

	switch Backend(cfg.Url) {
	case BackendPostgres:
		log.Info("Connecting to PostgreSQL...")
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Url)))
		if cfg.MaxOpenConns > 0 {
			sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		dsn := SQLiteDSN(cfg.Url)
		log.WithField("dsn", dsn).Info("Opening SQLite database...")
		sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			log.WithError(err).Error("Failed to open SQLite database")
			return nil, fmt.Errorf("%w: %v", models.ErrDatabaseConnection, err)
		}
		// SQLite serializes writers; a single connection also keeps :memory: databases alive.
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.Ping(); err != nil {
		log.WithError(err).Error("Failed to ping database")
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", models.ErrDatabaseConnection, err)
	}

	log.Info("Database connection established")
	return db, nil
}
