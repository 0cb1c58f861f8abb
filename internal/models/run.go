package models

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of an import [Run].
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunCounts summarizes an import.
type RunCounts struct {
	Total            int `json:"total"`
	Matched          int `json:"matched"`
	Unmatched        int `json:"unmatched"`
	Cached           int `json:"cached"`
	Skipped          int `json:"skipped"`
	PlaylistsCreated int `json:"playlists_created"`
}

// Run records one execution of the import driver.
type Run struct {
	id           string
	sequence     int
	libraryPath  string
	status       RunStatus
	counts       RunCounts
	errorMessage string
	startedAt    time.Time
	completedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

var _ Model = (*Run)(nil)

// NewRun creates a running [Run] for the library at path.
func NewRun(libraryPath string) *Run {
	now := time.Now()
	return &Run{
		libraryPath: libraryPath,
		status:      RunRunning,
		startedAt:   now,
		createdAt:   now,
		updatedAt:   now,
	}
}

// RestoreRun rebuilds a [Run] from stored columns.
func RestoreRun(
	id string, sequence int, libraryPath string, status RunStatus, counts RunCounts, errorMessage string,
	startedAt time.Time, completedAt *time.Time, createdAt, updatedAt time.Time, deletedAt *time.Time,
) *Run {
	return &Run{
		id:           id,
		sequence:     sequence,
		libraryPath:  libraryPath,
		status:       status,
		counts:       counts,
		errorMessage: errorMessage,
		startedAt:    startedAt,
		completedAt:  completedAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		deletedAt:    deletedAt,
	}
}

func (r *Run) ID() string              { return r.id }
func (r *Run) Sequence() int           { return r.sequence }
func (r *Run) LibraryPath() string     { return r.libraryPath }
func (r *Run) Status() RunStatus       { return r.status }
func (r *Run) Counts() RunCounts       { return r.counts }
func (r *Run) ErrorMessage() string    { return r.errorMessage }
func (r *Run) StartedAt() time.Time    { return r.startedAt }
func (r *Run) CompletedAt() *time.Time { return r.completedAt }
func (r *Run) CreatedAt() time.Time    { return r.createdAt }
func (r *Run) UpdatedAt() time.Time    { return r.updatedAt }
func (r *Run) DeletedAt() *time.Time   { return r.deletedAt }

func (r *Run) SetID(id string)            { r.id = id }
func (r *Run) SetSequence(seq int)        { r.sequence = seq }
func (r *Run) SetUpdatedAt(t time.Time)   { r.updatedAt = t }
func (r *Run) SetCounts(counts RunCounts) { r.counts = counts }

// Complete marks the run finished successfully.
func (r *Run) Complete(counts RunCounts) {
	now := time.Now()
	r.counts = counts
	r.status = RunCompleted
	r.completedAt = &now
	r.updatedAt = now
}

// Fail marks the run as failed with err.
func (r *Run) Fail(counts RunCounts, err error) {
	now := time.Now()
	r.counts = counts
	r.status = RunFailed
	if err != nil {
		r.errorMessage = err.Error()
	}
	r.completedAt = &now
	r.updatedAt = now
}

// Validate checks required fields and status values.
func (r *Run) Validate() error {
	if r.libraryPath == "" {
		return fmt.Errorf("library path is required")
	}
	switch r.status {
	case RunRunning, RunCompleted, RunFailed:
	default:
		return fmt.Errorf("invalid run status %q", r.status)
	}
	if r.counts.Total < 0 || r.counts.Matched < 0 || r.counts.Unmatched < 0 {
		return fmt.Errorf("run counts must not be negative")
	}
	return nil
}
