package Iservices

import (
	"context"

	"para-predict/internal/domain/entities"
)

// IWeatherService fetches current observations for a coordinate and maps
// them into the record's field keys. Only a subset of the manual schema is
// derivable this way; missing fields are simply absent from the map.
type IWeatherService interface {
	Fetch(ctx context.Context, coord entities.Coordinates) (map[string]float64, error)
}
