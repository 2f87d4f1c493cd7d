package Iservices

import "context"

// IPredictionService submits an assembled record to the remote predictor.
// Predict returns the raw yield value; Normalize converts it to the
// per-rai display value.
type IPredictionService interface {
	Predict(ctx context.Context, envData map[string]float64) (float64, error)
	Normalize(raw float64) float64
}
