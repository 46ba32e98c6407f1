package model

import "time"

// RunStatus represents the current state of a forecast run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run represents one execution of the forecast pipeline over an input file.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"` // input file the series came from
	Status    RunStatus `json:"status"`
	Wells     int       `json:"wells"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status RunStatus `json:"status,omitempty"`
	Source string    `json:"source,omitempty"`
	Limit  int       `json:"limit,omitempty"`
	Offset int       `json:"offset,omitempty"`
}
