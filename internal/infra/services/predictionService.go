package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"para-predict/internal/domain/dto"
	Iservices "para-predict/internal/domain/interfaces/services"
	"para-predict/internal/infra/logger"
)

// yieldAreaDivisor converts the predictor's raw output to a per-rai value.
// Fixed by the deployment's measurement convention, not configurable.
const yieldAreaDivisor = 25.0

// PredictionService submits assembled records to the remote predictor.
// Exactly one request is issued per completed record.
type PredictionService struct {
	Logger     *logger.Logger
	HttpClient *http.Client
	BaseURL    string
}

func NewPredictionService(logger *logger.Logger, httpClient *http.Client, baseURL string) *PredictionService {
	return &PredictionService{Logger: logger, HttpClient: httpClient, BaseURL: baseURL}
}

func (ps *PredictionService) Predict(ctx context.Context, envData map[string]float64) (float64, error) {
	payload, err := json.Marshal(dto.PredictionRequest{EnvData: envData})
	if err != nil {
		return 0, fmt.Errorf("marshal prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ps.BaseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ps.HttpClient.Do(req)
	if err != nil {
		ps.Logger.Error(fmt.Sprintf("Prediction request failed: %v", err))
		return 0, fmt.Errorf("prediction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		ps.Logger.Error(fmt.Sprintf("Predictor returned %s: %s", resp.Status, string(body)))
		return 0, fmt.Errorf("predictor status %s", resp.Status)
	}

	var prediction dto.PredictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return 0, fmt.Errorf("decode prediction response: %w", err)
	}

	if prediction.Result == nil {
		return 0, Iservices.ErrMissingResult
	}
	return *prediction.Result, nil
}

func (ps *PredictionService) Normalize(raw float64) float64 {
	return raw / yieldAreaDivisor
}
