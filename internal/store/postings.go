package store

import (
	"context"
	"database/sql"
	"fmt"

	"jobpost-etl/internal/model"
)

// SchemaReady reports whether all six tables exist.
func (d *DB) SchemaReady(ctx context.Context) bool {
	for _, t := range Tables {
		if !tableExists(ctx, d.Pool, d.Dialect, t) {
			return false
		}
	}
	return true
}

// SavePosting writes rec as one job row and its five child rows in a single
// transaction. The children reference the id the store assigned to the job
// row, read back inside the same transaction; on any error nothing is kept.
func (d *DB) SavePosting(ctx context.Context, rec model.NormalizedRecord) (jobID int64, err error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	jobID, err = insertJob(ctx, tx, d.Dialect, rec.Job)
	if err != nil {
		return 0, err
	}
	if err = insertChildren(ctx, tx, d.Dialect, jobID, rec); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return jobID, nil
}

func insertJob(ctx context.Context, tx *sql.Tx, d Dialect, j model.Job) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, d.rebind(`
INSERT INTO job (title, industry, description, employment_type, date_posted)
VALUES (?, ?, ?, ?, ?)
RETURNING id;`),
		j.Title, j.Industry, j.Description, j.EmploymentType, j.DatePosted,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	return id, nil
}

func insertChildren(ctx context.Context, tx *sql.Tx, d Dialect, jobID int64, rec model.NormalizedRecord) error {
	rows := []struct {
		table string
		query string
		args  []any
	}{
		{"company", `INSERT INTO company (job_id, name, link) VALUES (?, ?, ?);`,
			[]any{jobID, rec.Company.Name, rec.Company.Link}},
		{"education", `INSERT INTO education (job_id, required_credential) VALUES (?, ?);`,
			[]any{jobID, rec.Education.RequiredCredential}},
		{"experience", `INSERT INTO experience (job_id, months_of_experience, seniority_level) VALUES (?, ?, ?);`,
			[]any{jobID, rec.Experience.MonthsOfExperience, rec.Experience.SeniorityLevel}},
		{"salary", `INSERT INTO salary (job_id, currency, min_value, max_value, unit) VALUES (?, ?, ?, ?, ?);`,
			[]any{jobID, rec.Salary.Currency, rec.Salary.MinValue, rec.Salary.MaxValue, rec.Salary.Unit}},
		{"location", `
INSERT INTO location (job_id, country, locality, region, postal_code, street_address, latitude, longitude)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
			[]any{jobID, rec.Location.Country, rec.Location.Locality, rec.Location.Region,
				rec.Location.PostalCode, rec.Location.StreetAddress, rec.Location.Latitude, rec.Location.Longitude}},
	}
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, d.rebind(r.query), r.args...); err != nil {
			return fmt.Errorf("insert %s: %w", r.table, err)
		}
	}
	return nil
}
