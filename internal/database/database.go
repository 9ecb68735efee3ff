// Package database opens the connection used for catalog introspection.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/rzpsarthak13/schema-forge/internal/config"
	"github.com/rzpsarthak13/schema-forge/internal/logging"
)

// ErrClosed is returned by queries on a closed Database.
var ErrClosed = errors.New("database is closed")

// Database wraps a *sql.DB and logs every catalog query. It satisfies
// core.Querier.
type Database struct {
	db     *sql.DB
	log    *zap.Logger
	closed bool
}

// Open connects to the database described by cfg, configures the pool and
// pings it once.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("database.host is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database.database is required")
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("database.username is required")
	}

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Type {
	case "mysql":
		db, err = openMySQL(cfg)
	case "postgres", "postgresql":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	timeout := cfg.ConnectionTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, logging.OrNop(logger).With(zap.String("type", cfg.Type), zap.String("host", cfg.Host))), nil
}

// New wraps an already opened *sql.DB.
func New(db *sql.DB, logger *zap.Logger) *Database {
	return &Database{
		db:  db,
		log: logging.OrNop(logger).Named("database"),
	}
}

// QueryContext executes a SELECT and returns its rows. Driver errors are
// returned unchanged.
func (d *Database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if d.closed {
		return nil, ErrClosed
	}
	d.log.Debug("executing query", zap.String("query", query), zap.Any("args", args))
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		d.log.Error("query failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}
	d.log.Debug("query executed", zap.Duration("duration", time.Since(start)))
	return rows, nil
}

// DB returns the underlying pool.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Close closes the database connection.
func (d *Database) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

func openMySQL(cfg config.DatabaseConfig) (*sql.DB, error) {
	connector, err := mysql.NewConnector(mysqlConfig(cfg))
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

func mysqlConfig(cfg config.DatabaseConfig) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = cfg.Username
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = cfg.ConnectionTimeout
	return mc
}

func openPostgres(cfg config.DatabaseConfig) (*sql.DB, error) {
	pc, err := pgx.ParseConfig(postgresURL(cfg))
	if err != nil {
		return nil, err
	}
	return stdlib.OpenDB(*pc), nil
}

func postgresURL(cfg config.DatabaseConfig) string {
	q := url.Values{}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	if cfg.ConnectionTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectionTimeout.Seconds())))
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}
