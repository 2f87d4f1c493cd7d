package repository

import (
	"context"

	"para-predict/internal/domain/entities"
)

// PredictionHistory persists completed predictions for the operator surface.
// A history failure is logged, never user-visible.
type PredictionHistory interface {
	Save(ctx context.Context, record entities.PredictionRecord) error
	Recent(ctx context.Context, limit int) ([]entities.PredictionRecord, error)
	Close() error
}
