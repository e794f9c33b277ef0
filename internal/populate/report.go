package populate

import (
	"time"
)

// Job status values.
const (
	StatusComplete  = "complete"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Per-file status values.
const (
	FileDeployed  = "deployed"
	FileFailed    = "failed"
	FileCancelled = "cancelled"
)

// FileResult records what happened to one profile entry.
type FileResult struct {
	Path    string      `json:"path"`
	Status  string      `json:"status"`
	Error   string      `json:"error,omitempty"`
	TokenID string      `json:"token_id,omitempty"`
	Mode    uint32      `json:"mode,omitempty"`
	ModTime time.Time   `json:"mod_time,omitempty"`
	Report  interface{} `json:"validation,omitempty"`
}

// Report is the complete outcome of one population job. Callers always get a
// report, never a bare error, so they can see which files made it.
type Report struct {
	DecoyID  string       `json:"decoy_id"`
	JobID    string       `json:"job_id"`
	Profile  string       `json:"profile"`
	Status   string       `json:"status"`
	Root     string       `json:"root"`
	Files    []FileResult `json:"files"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
}

// Deployed counts successfully written files.
func (r *Report) Deployed() int {
	n := 0
	for _, f := range r.Files {
		if f.Status == FileDeployed {
			n++
		}
	}
	return n
}

// Failures returns the failed entries.
func (r *Report) Failures() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Status == FileFailed {
			out = append(out, f)
		}
	}
	return out
}

// summarize derives the job status from per-file outcomes.
func (r *Report) summarize(cancelled bool) {
	if cancelled {
		r.Status = StatusCancelled
		return
	}
	deployed := r.Deployed()
	switch {
	case deployed == len(r.Files):
		r.Status = StatusComplete
	case deployed == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}
