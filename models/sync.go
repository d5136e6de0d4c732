package models

import "time"

// RunReport summarises one dispatcher run.
type RunReport struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Snapshot   int           `json:"snapshot"`
	Dispatched int           `json:"dispatched"`
	Removed    int           `json:"removed"`
	Skipped    int           `json:"skipped"`
	Voided     int           `json:"voided"`
	Failed     int           `json:"failed"`
	Malformed  int           `json:"malformed"`
	Resolved   int           `json:"resolved"`
}
