package load

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"jobpost-etl/internal/model"
	"jobpost-etl/internal/scheduler"
	"jobpost-etl/internal/store"
)

func ptr[T any](v T) *T { return &v }

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(store.SQLite, filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(context.Background(), db))
	return db
}

func record(title string, months float64, level string) model.NormalizedRecord {
	return model.NormalizedRecord{
		Job: model.Job{
			Title: ptr(title), Industry: ptr("Software"), Description: ptr("Build APIs"),
			EmploymentType: ptr("FULL_TIME"), DatePosted: ptr("2024-05-01"),
		},
		Company:    model.Company{Name: ptr("Acme"), Link: ptr("https://acme.example")},
		Education:  model.Education{RequiredCredential: ptr("bachelor degree")},
		Experience: model.Experience{MonthsOfExperience: ptr(months), SeniorityLevel: ptr(level)},
	}
}

func writeRecord(t *testing.T, dir, name string, rec model.NormalizedRecord) {
	t.Helper()
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), b, 0o644))
}

func TestValidatorAcceptsMappedRecords(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	for _, rec := range []model.NormalizedRecord{{}, record("Backend Engineer", 30, "Mid-Level")} {
		b, err := json.Marshal(rec)
		require.NoError(t, err)
		got, err := v.Decode(b)
		require.NoError(t, err)
		require.Equal(t, rec, got)
	}
}

func TestValidatorRejects(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	full, err := json.Marshal(record("x", 1, "Junior"))
	require.NoError(t, err)
	mutate := func(f func(m map[string]any)) []byte {
		var m map[string]any
		require.NoError(t, json.Unmarshal(full, &m))
		f(m)
		b, err := json.Marshal(m)
		require.NoError(t, err)
		return b
	}

	cases := map[string][]byte{
		"not json":        []byte(`{`),
		"array":           []byte(`[]`),
		"trailing data":   append(append([]byte{}, full...), []byte(` {}`)...),
		"missing section": mutate(func(m map[string]any) { delete(m, "salary") }),
		"extra section":   mutate(func(m map[string]any) { m["benefits"] = map[string]any{} }),
		"partial section": mutate(func(m map[string]any) {
			m["company"].(map[string]any)["link"] = nil
		}),
		"wrong type": mutate(func(m map[string]any) {
			m["experience"].(map[string]any)["months_of_experience"] = "thirty"
		}),
		"missing field": mutate(func(m map[string]any) {
			delete(m["education"].(map[string]any), "required_credential")
		}),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Decode(b)
			require.Error(t, err)
		})
	}
}

func TestRunLoadsInNumericOrder(t *testing.T) {
	db := openTestDB(t)
	in := t.TempDir()
	writeRecord(t, in, "10.json", record("ten", 130, "Lead"))
	writeRecord(t, in, "2.json", record("two", 60, "Senior"))
	writeRecord(t, in, "1.json", record("one", 12, "Junior"))

	st, err := Run(context.Background(), db, Options{InDir: in})
	require.NoError(t, err)
	require.Equal(t, 3, st.Inputs)
	require.Equal(t, []Loaded{
		{Seq: 1, File: "1.json", JobID: 1},
		{Seq: 2, File: "2.json", JobID: 2},
		{Seq: 3, File: "10.json", JobID: 3},
	}, st.Loaded)

	for _, l := range st.Loaded {
		var title, level string
		require.NoError(t, db.Pool.QueryRow(
			`SELECT j.title, e.seniority_level FROM job j JOIN experience e ON e.job_id = j.id WHERE j.id = ?;`,
			l.JobID).Scan(&title, &level))
		require.Equal(t, map[string]string{"1.json": "one", "2.json": "two", "10.json": "ten"}[l.File], title)
		require.NotEmpty(t, level)
	}
}

func TestRunBackendEngineerSharesJobID(t *testing.T) {
	db := openTestDB(t)
	in := t.TempDir()
	writeRecord(t, in, "1.json", record("Backend Engineer", 30, "Mid-Level"))

	st, err := Run(context.Background(), db, Options{InDir: in})
	require.NoError(t, err)
	require.Len(t, st.Loaded, 1)
	id := st.Loaded[0].JobID

	counts, err := store.CountRows(context.Background(), db)
	require.NoError(t, err)
	for _, table := range store.Tables {
		require.Equal(t, int64(1), counts[table], table)
	}
	for _, table := range store.Tables[1:] {
		var jobID int64
		require.NoError(t, db.Pool.QueryRow(`SELECT job_id FROM `+table+`;`).Scan(&jobID))
		require.Equal(t, id, jobID, table)
	}

	var currency *string
	require.NoError(t, db.Pool.QueryRow(`SELECT currency FROM salary;`).Scan(&currency))
	require.Nil(t, currency)
}

func TestRunSkipsBadRecords(t *testing.T) {
	db := openTestDB(t)
	in := t.TempDir()
	writeRecord(t, in, "1.json", record("one", 12, "Junior"))
	require.NoError(t, os.WriteFile(filepath.Join(in, "2.json"), []byte(`{"job": {}}`), 0o644))
	writeRecord(t, in, "3.json", record("three", 24, "Mid-Level"))

	st, err := Run(context.Background(), db, Options{InDir: in})
	require.NoError(t, err)
	require.Equal(t, 1, st.Skipped)
	require.Equal(t, "2.json", st.Skips[0].File)
	require.Equal(t, "load", st.Skips[0].Stage)
	require.Len(t, st.Loaded, 2)
	require.Equal(t, 2, st.Loaded[1].Seq)
	require.Equal(t, "3.json", st.Loaded[1].File)

	counts, err := store.CountRows(context.Background(), db)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts["job"])
}

func TestRunFailFast(t *testing.T) {
	db := openTestDB(t)
	in := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "1.json"), []byte(`nope`), 0o644))
	writeRecord(t, in, "2.json", record("two", 12, "Junior"))

	st, err := Run(context.Background(), db, Options{InDir: in, FailFast: true})
	require.ErrorContains(t, err, "1.json")
	require.Empty(t, st.Loaded)
}

func TestRunInsertFailureLeavesNoRows(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Pool.Exec(`DROP TABLE location;`)
	require.NoError(t, err)

	in := t.TempDir()
	writeRecord(t, in, "1.json", record("one", 12, "Junior"))

	st, err := Run(context.Background(), db, Options{InDir: in})
	require.NoError(t, err)
	require.Equal(t, 1, st.Skipped)

	var n int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM job;`).Scan(&n))
	require.Zero(t, n)
}

func TestRetriedRunDoesNotReinsertCommitted(t *testing.T) {
	db := openTestDB(t)
	in := t.TempDir()
	writeRecord(t, in, "1.json", record("one", 12, "Junior"))
	require.NoError(t, os.WriteFile(filepath.Join(in, "2.json"), []byte(`{"job":{}}`), 0o644))

	var st Stats
	attempts := 0
	err := scheduler.Retry(context.Background(), scheduler.RetryPolicy{Retries: 2}, "load", func(ctx context.Context) error {
		attempts++
		prev := st
		var err error
		st, err = Run(ctx, db, Options{InDir: in, FailFast: true, Resume: &prev})
		return err
	})
	require.ErrorContains(t, err, "2.json")
	require.Equal(t, 3, attempts)
	require.Equal(t, []Loaded{{Seq: 1, File: "1.json", JobID: 1}}, st.Loaded)

	counts, err := store.CountRows(context.Background(), db)
	require.NoError(t, err)
	for _, table := range store.Tables {
		require.Equal(t, int64(1), counts[table], table)
	}
}

func TestRunResumeContinuesSequence(t *testing.T) {
	db := openTestDB(t)
	in := t.TempDir()
	writeRecord(t, in, "1.json", record("one", 12, "Junior"))
	writeRecord(t, in, "2.json", record("two", 30, "Mid-Level"))

	prev := Stats{Loaded: []Loaded{{Seq: 1, File: "1.json", JobID: 41}}}
	st, err := Run(context.Background(), db, Options{InDir: in, Resume: &prev})
	require.NoError(t, err)
	require.Equal(t, []Loaded{
		{Seq: 1, File: "1.json", JobID: 41},
		{Seq: 2, File: "2.json", JobID: 1},
	}, st.Loaded)
}
