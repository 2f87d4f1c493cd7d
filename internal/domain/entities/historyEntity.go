package entities

import "time"

// Prediction sources.
const (
	SourceManual   = "manual"
	SourceLocation = "location"
)

// PredictionRecord is one completed prediction kept for the operator surface.
type PredictionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Source    string    `json:"source"`
	RawResult float64   `json:"raw_result"`
	Result    float64   `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}
