package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jobpost-etl/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(SQLite, filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func ptr[T any](v T) *T { return &v }

func fullRecord(title string) model.NormalizedRecord {
	return model.NormalizedRecord{
		Location: model.Location{
			Country: ptr("US"), Locality: ptr("Austin"), Region: ptr("Austin"), PostalCode: ptr("78701"),
			StreetAddress: ptr("1 Congress Ave"), Latitude: ptr(30.2672), Longitude: ptr(-97.7431),
		},
		Salary: model.Salary{Currency: ptr("USD"), MinValue: ptr(100000.0), MaxValue: ptr(130000.0), Unit: ptr("YEAR")},
		Job: model.Job{
			Title: ptr(title), Industry: ptr("Software"), Description: ptr("Build things"),
			EmploymentType: ptr("FULL_TIME"), DatePosted: ptr("2024-01-03"),
		},
		Company:    model.Company{Name: ptr("Acme"), Link: ptr("https://acme.example")},
		Education:  model.Education{RequiredCredential: ptr("bachelor degree")},
		Experience: model.Experience{MonthsOfExperience: ptr(30.0), SeniorityLevel: ptr("Mid-Level")},
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	require.True(t, db.SchemaReady(ctx))

	counts, err := CountRows(ctx, db)
	require.NoError(t, err)
	require.Len(t, counts, 6)
	for table, n := range counts {
		require.Zero(t, n, table)
	}
}

func TestMigrateRestoresDroppedTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Pool.Exec(`DROP TABLE location;`)
	require.NoError(t, err)
	require.False(t, db.SchemaReady(ctx))

	require.NoError(t, Migrate(ctx, db))
	require.True(t, db.SchemaReady(ctx))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	require.Equal(t, schemaVersion, v)
}

func TestSavePostingSharesJobID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, err := db.SavePosting(ctx, fullRecord("Backend Engineer"))
	require.NoError(t, err)
	second, err := db.SavePosting(ctx, fullRecord("Data Engineer"))
	require.NoError(t, err)
	require.Equal(t, int64(1), first)
	require.Equal(t, int64(2), second)

	for _, table := range Tables[1:] {
		var n int
		require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE job_id = ?;`, second).Scan(&n))
		require.Equal(t, 1, n, table)
	}

	jobs, err := ListJobs(ctx, db, ListJobsOpts{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, "Data Engineer", *jobs[1].Title)
	require.Equal(t, "Acme", *jobs[1].Company)
	require.Equal(t, "Mid-Level", *jobs[1].SeniorityLevel)
	require.Equal(t, 30.0, *jobs[1].Months)
	require.Equal(t, 130000.0, *jobs[1].MaxSalary)
}

func TestSavePostingWithAbsentSections(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	rec := fullRecord("Backend Engineer")
	rec.Salary = model.Salary{}
	rec.Location = model.Location{}

	id, err := db.SavePosting(ctx, rec)
	require.NoError(t, err)

	var currency, country *string
	require.NoError(t, db.Pool.QueryRow(`SELECT currency FROM salary WHERE job_id = ?;`, id).Scan(&currency))
	require.NoError(t, db.Pool.QueryRow(`SELECT country FROM location WHERE job_id = ?;`, id).Scan(&country))
	require.Nil(t, currency)
	require.Nil(t, country)

	jobs, err := ListJobs(ctx, db, ListJobsOpts{Limit: 10})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Nil(t, jobs[0].MinSalary)
	require.Nil(t, jobs[0].Country)
}

func TestSavePostingRollsBackOnChildFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Pool.Exec(`DROP TABLE location;`)
	require.NoError(t, err)

	_, err = db.SavePosting(ctx, fullRecord("Backend Engineer"))
	require.ErrorContains(t, err, "insert location")

	for _, table := range []string{"job", "company", "education", "experience", "salary"} {
		var n int
		require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM `+table+`;`).Scan(&n))
		require.Zero(t, n, table)
	}
	require.False(t, db.SchemaReady(ctx))
}

func TestListJobsCursor(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		_, err := db.SavePosting(ctx, fullRecord(title))
		require.NoError(t, err)
	}

	jobs, err := ListJobs(ctx, db, ListJobsOpts{After: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, int64(2), jobs[0].ID)
}

func TestRebind(t *testing.T) {
	q := `INSERT INTO salary (job_id, currency) VALUES (?, ?);`
	require.Equal(t, q, SQLite.rebind(q))
	require.Equal(t, `INSERT INTO salary (job_id, currency) VALUES ($1, $2);`, Postgres.rebind(q))
}

func TestDDL(t *testing.T) {
	for _, d := range []Dialect{SQLite, Postgres} {
		stmts := DDL(d)
		require.Len(t, stmts, len(Tables)+len(Tables)-1)
		require.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS job")
	}
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open(Dialect("mysql"), "x")
	require.Error(t, err)
}
