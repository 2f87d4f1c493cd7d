package dto

// PredictionRequest is the wire payload sent to the yield predictor. Only
// numeric fields travel in env_data; the predictor tolerates a partial set.
type PredictionRequest struct {
	EnvData map[string]float64 `json:"env_data"`
}

// PredictionResponse carries the raw yield estimate. A nil Result means the
// predictor answered without the expected field.
type PredictionResponse struct {
	Result *float64 `json:"result"`
}
