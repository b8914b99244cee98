package history

import "time"

// Status records how a conversion ended.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Entry is one recorded conversion.
type Entry struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Input       string    `json:"input"`
	Output      string    `json:"output,omitempty"`
	Direction   string    `json:"direction,omitempty"`
	Records     int       `json:"records"`
	Skipped     int       `json:"skipped"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Duration returns how long the conversion took.
func (e Entry) Duration() time.Duration {
	if e.CompletedAt.IsZero() || e.StartedAt.IsZero() {
		return 0
	}
	return e.CompletedAt.Sub(e.StartedAt)
}

// Summary counts entries by status.
type Summary struct {
	Total     int `json:"total"`
	Converted int `json:"converted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
