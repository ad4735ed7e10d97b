package models

import "time"

// ProgressEvent is one step in an analysis run. Events form an append-only
// sequence per run and are discarded once the run ends.
type ProgressEvent struct {
	Step      string         `json:"step"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}
