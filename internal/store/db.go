package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour of the backing store.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

type DB struct {
	Pool    *sql.DB
	Dialect Dialect
}

// Open connects to a SQLite file (target is a path) or Postgres (target is
// a DSN).
func Open(dialect Dialect, target string) (*DB, error) {
	var (
		pool *sql.DB
		err  error
	)
	switch dialect {
	case SQLite:
		// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", target)
		pool, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, err
		}
		pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	case Postgres:
		pool, err = sql.Open("pgx", target)
		if err != nil {
			return nil, err
		}
		pool.SetMaxOpenConns(4)
	default:
		return nil, fmt.Errorf("store: unknown dialect %q", dialect)
	}
	pool.SetConnMaxLifetime(5 * time.Minute)

	// quick ping
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &DB{Pool: pool, Dialect: dialect}, nil
}

func (d *DB) Close() error {
	if d == nil || d.Pool == nil {
		return nil
	}
	return d.Pool.Close()
}

// rebind rewrites ? placeholders into the dialect's form.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
