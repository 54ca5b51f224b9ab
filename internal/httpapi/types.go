package httpapi

import (
	"jobpost-etl/internal/config"
	"jobpost-etl/internal/runlog"
)

type RunStatus struct {
	Running bool `json:"running"`
	// Current is the id of the run in progress.
	Current string            `json:"current,omitempty"`
	Last    *runlog.RunRecord `json:"last"`
}

// ConfigApplied answers PUT /config. Pipeline settings reach the runner
// before the next run; RestartRequired lists the saved keys that are only
// read at startup.
type ConfigApplied struct {
	Config          config.Config `json:"config"`
	AppliesTo       string        `json:"applies_to"`
	RestartRequired []string      `json:"restart_required"`
}
