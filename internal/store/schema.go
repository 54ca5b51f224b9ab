package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const schemaVersion = 1

// ErrSchemaIncomplete is returned when a table is still missing after
// migration.
var ErrSchemaIncomplete = errors.New("store: schema incomplete after migrate")

// Tables lists the six tables in creation order; children follow job.
var Tables = []string{"job", "company", "education", "experience", "salary", "location"}

var sqliteDDL = []string{`
CREATE TABLE IF NOT EXISTS job (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title VARCHAR(225),
  industry VARCHAR(225),
  description TEXT,
  employment_type VARCHAR(125),
  date_posted DATE
);`, `
CREATE TABLE IF NOT EXISTS company (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER,
  name VARCHAR(225),
  link TEXT,
  FOREIGN KEY (job_id) REFERENCES job(id)
);`, `
CREATE TABLE IF NOT EXISTS education (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER,
  required_credential VARCHAR(225),
  FOREIGN KEY (job_id) REFERENCES job(id)
);`, `
CREATE TABLE IF NOT EXISTS experience (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER,
  months_of_experience INTEGER,
  seniority_level VARCHAR(25),
  FOREIGN KEY (job_id) REFERENCES job(id)
);`, `
CREATE TABLE IF NOT EXISTS salary (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER,
  currency VARCHAR(3),
  min_value NUMERIC,
  max_value NUMERIC,
  unit VARCHAR(12),
  FOREIGN KEY (job_id) REFERENCES job(id)
);`, `
CREATE TABLE IF NOT EXISTS location (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  job_id INTEGER,
  country VARCHAR(60),
  locality VARCHAR(60),
  region VARCHAR(60),
  postal_code VARCHAR(25),
  street_address VARCHAR(225),
  latitude NUMERIC,
  longitude NUMERIC,
  FOREIGN KEY (job_id) REFERENCES job(id)
);`}

// Postgres enforces VARCHAR lengths that SQLite ignores, so text columns are
// TEXT here; date_posted keeps the source's ISO string.
var postgresDDL = []string{`
CREATE TABLE IF NOT EXISTS job (
  id BIGSERIAL PRIMARY KEY,
  title TEXT,
  industry TEXT,
  description TEXT,
  employment_type TEXT,
  date_posted TEXT
);`, `
CREATE TABLE IF NOT EXISTS company (
  id BIGSERIAL PRIMARY KEY,
  job_id BIGINT REFERENCES job(id),
  name TEXT,
  link TEXT
);`, `
CREATE TABLE IF NOT EXISTS education (
  id BIGSERIAL PRIMARY KEY,
  job_id BIGINT REFERENCES job(id),
  required_credential TEXT
);`, `
CREATE TABLE IF NOT EXISTS experience (
  id BIGSERIAL PRIMARY KEY,
  job_id BIGINT REFERENCES job(id),
  months_of_experience NUMERIC,
  seniority_level TEXT
);`, `
CREATE TABLE IF NOT EXISTS salary (
  id BIGSERIAL PRIMARY KEY,
  job_id BIGINT REFERENCES job(id),
  currency TEXT,
  min_value NUMERIC,
  max_value NUMERIC,
  unit TEXT
);`, `
CREATE TABLE IF NOT EXISTS location (
  id BIGSERIAL PRIMARY KEY,
  job_id BIGINT REFERENCES job(id),
  country TEXT,
  locality TEXT,
  region TEXT,
  postal_code TEXT,
  street_address TEXT,
  latitude NUMERIC,
  longitude NUMERIC
);`}

// DDL returns the CREATE TABLE statements for d, followed by the job_id
// indexes on the child tables.
func DDL(d Dialect) []string {
	var out []string
	if d == Postgres {
		out = append(out, postgresDDL...)
	} else {
		out = append(out, sqliteDDL...)
	}
	for _, t := range Tables[1:] {
		out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_job_id ON %s(job_id);", t, t))
	}
	return out
}

// Migrate creates whatever part of the schema is missing. It is safe to call
// at the start of every run; user_version only records the schema version.
func Migrate(ctx context.Context, db *DB) error {
	tx, err := db.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range DDL(db.Dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}

	if db.Dialect == SQLite {
		var v int
		if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
			return err
		}
		if v < schemaVersion {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	if !db.SchemaReady(ctx) {
		return ErrSchemaIncomplete
	}
	return nil
}

func tableExists(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, d Dialect, table string) bool {
	query := `SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ? LIMIT 1;`
	if d == Postgres {
		query = `SELECT 1 FROM information_schema.tables WHERE table_name = ? LIMIT 1;`
	}
	var one int
	err := q.QueryRowContext(ctx, d.rebind(query), table).Scan(&one)
	return err == nil
}
