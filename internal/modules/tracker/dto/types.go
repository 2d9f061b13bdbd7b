package dto

import "time"

// StartInput names the activity to run. A zero At means the tracker clock.
type StartInput struct {
	Name string    `json:"name"`
	At   time.Time `json:"at,omitempty"`
}

type StopInput struct {
	At time.Time `json:"at,omitempty"`
}

type TickInput struct {
	At time.Time `json:"at,omitempty"`
}

type StateOutput struct {
	Running          bool      `json:"running"`
	ActivityID       int64     `json:"activity_id,omitempty"`
	Activity         string    `json:"activity,omitempty"`
	SessionID        int64     `json:"session_id,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	LastReconciledAt time.Time `json:"last_reconciled_at"`
	ElapsedSec       float64   `json:"elapsed_sec"`
	LastError        string    `json:"last_error,omitempty"`
}

type TotalOutput struct {
	Activity string  `json:"activity"`
	Seconds  float64 `json:"seconds"`
}

type SessionsInput struct {
	Limit int
}

type SessionOutput struct {
	ID          int64     `json:"id"`
	Activity    string    `json:"activity"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DurationSec float64   `json:"duration_sec"`
	Live        bool      `json:"live"`
}
