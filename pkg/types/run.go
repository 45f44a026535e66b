// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStatus indicates how a conversion run ended.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
	RunSkipped   RunStatus = "skipped"
)

// RunRecord is one entry of the conversion history.
type RunRecord struct {
	// ID is a random UUID assigned when the run starts.
	ID string `json:"id" yaml:"id"`

	// Source is the input PDF path.
	Source string `json:"source" yaml:"source"`

	// Destination is the output PDF path.
	Destination string `json:"destination" yaml:"destination"`

	Rule LayoutRule `json:"rule" yaml:"rule"`

	Zoom float64 `json:"zoom" yaml:"zoom"`

	// SourcePages is the page count of the input document.
	SourcePages int `json:"source_pages" yaml:"source_pages"`

	// OutputPages is the number of pages committed to the output.
	OutputPages int `json:"output_pages" yaml:"output_pages"`

	Status RunStatus `json:"status" yaml:"status"`

	// Error holds the failure message for failed runs.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}
