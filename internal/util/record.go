package util

import (
	"strconv"
	"strings"

	"para-predict/internal/domain/entities"
)

// EnvData converts an ordered record into the numeric env_data payload.
// Non-numeric answers (the harvest date) are part of the record but have no
// place on the numeric wire contract, so they are skipped.
func EnvData(record []entities.Answer) map[string]float64 {
	envData := make(map[string]float64, len(record))
	for _, answer := range record {
		value, err := strconv.ParseFloat(strings.TrimSpace(answer.Value), 64)
		if err != nil {
			continue
		}
		envData[answer.Key] = value
	}
	return envData
}
