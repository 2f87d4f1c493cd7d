package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"para-predict/internal/domain/dto"
	"para-predict/internal/domain/entities"
	"para-predict/internal/infra/logger"
)

// WeatherService fetches current observations and maps them into the
// record's field keys. Only wind speed, the three temperatures and the
// average humidity are derivable; the predictor tolerates the partial set.
type WeatherService struct {
	Logger     *logger.Logger
	HttpClient *http.Client
	BaseURL    string
	APIKey     string
}

func NewWeatherService(logger *logger.Logger, httpClient *http.Client, baseURL, apiKey string) *WeatherService {
	return &WeatherService{Logger: logger, HttpClient: httpClient, BaseURL: baseURL, APIKey: apiKey}
}

func (ws *WeatherService) Fetch(ctx context.Context, coord entities.Coordinates) (map[string]float64, error) {
	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	query.Set("units", "metric")
	query.Set("appid", ws.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ws.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := ws.HttpClient.Do(req)
	if err != nil {
		ws.Logger.Error(fmt.Sprintf("Weather request failed: %v", err))
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		ws.Logger.Error(fmt.Sprintf("Weather API returned %s: %s", resp.Status, string(body)))
		return nil, fmt.Errorf("weather API status %s", resp.Status)
	}

	var weather dto.WeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&weather); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	return map[string]float64{
		"AvgWind":     weather.Wind.Speed,
		"MaxTemp":     weather.Main.TempMax,
		"AvgTemp":     weather.Main.Temp,
		"MinTemp":     weather.Main.TempMin,
		"AvgHumidity": weather.Main.Humidity,
	}, nil
}
