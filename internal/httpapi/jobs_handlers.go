package httpapi

import (
	"net/http"
	"strconv"

	"jobpost-etl/internal/store"
)

type JobsHandler struct {
	DB *store.DB
}

func (h JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListJobsOpts{}

	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		opts.Limit = n
	}
	if s := q.Get("after"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "invalid_cursor", "after must be a job id")
			return
		}
		opts.After = n
	}

	jobs, err := store.ListJobs(r.Context(), h.DB, opts)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if jobs == nil {
		jobs = []store.JobSummary{}
	}
	writeOK(w, jobs)
}
