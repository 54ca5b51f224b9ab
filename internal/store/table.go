package store

import (
	"context"
	"database/sql"
	"fmt"
)

// JobSummary is a loaded job joined with the child rows a reader usually wants.
type JobSummary struct {
	ID             int64    `json:"id"`
	Title          *string  `json:"title"`
	Industry       *string  `json:"industry"`
	EmploymentType *string  `json:"employmentType"`
	DatePosted     *string  `json:"datePosted"`
	Company        *string  `json:"company"`
	CompanyLink    *string  `json:"companyLink"`
	SeniorityLevel *string  `json:"seniorityLevel"`
	Months         *float64 `json:"monthsOfExperience"`
	Country        *string  `json:"country"`
	Locality       *string  `json:"locality"`
	Currency       *string  `json:"currency"`
	MinSalary      *float64 `json:"minSalary"`
	MaxSalary      *float64 `json:"maxSalary"`
	SalaryUnit     *string  `json:"salaryUnit"`
}

type ListJobsOpts struct {
	Limit int
	After int64 // keyset cursor: only ids greater than this
}

func ListJobs(ctx context.Context, db *DB, opts ListJobsOpts) ([]JobSummary, error) {
	if opts.Limit <= 0 || opts.Limit > 5000 {
		opts.Limit = 500
	}

	rows, err := db.Pool.QueryContext(ctx, db.Dialect.rebind(`
SELECT j.id, j.title, j.industry, j.employment_type, j.date_posted,
       c.name, c.link,
       e.seniority_level, e.months_of_experience,
       l.country, l.locality,
       s.currency, s.min_value, s.max_value, s.unit
FROM job j
LEFT JOIN company c ON c.job_id = j.id
LEFT JOIN experience e ON e.job_id = j.id
LEFT JOIN location l ON l.job_id = j.id
LEFT JOIN salary s ON s.job_id = j.id
WHERE j.id > ?
ORDER BY j.id ASC
LIMIT ?;
`), opts.After, opts.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JobSummary
	for rows.Next() {
		var j JobSummary
		var months, minSalary, maxSalary sql.NullFloat64
		if err := rows.Scan(
			&j.ID, &j.Title, &j.Industry, &j.EmploymentType, &j.DatePosted,
			&j.Company, &j.CompanyLink,
			&j.SeniorityLevel, &months,
			&j.Country, &j.Locality,
			&j.Currency, &minSalary, &maxSalary, &j.SalaryUnit,
		); err != nil {
			return nil, err
		}
		j.Months = floatPtr(months)
		j.MinSalary = floatPtr(minSalary)
		j.MaxSalary = floatPtr(maxSalary)
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountRows returns the row count of each of the six tables.
func CountRows(ctx context.Context, db *DB) (map[string]int64, error) {
	out := make(map[string]int64, len(Tables))
	for _, t := range Tables {
		var n int64
		if err := db.Pool.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s;`, t)).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
