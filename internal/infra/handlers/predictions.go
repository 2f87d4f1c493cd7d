package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	repo "para-predict/internal/domain/interfaces/repository"
	"para-predict/internal/infra/logger"
)

// HistoryHandlers exposes the recorded predictions as a small operator
// surface.
type HistoryHandlers struct {
	Logger  *logger.Logger
	History repo.PredictionHistory
}

func NewHistoryHandlers(logger *logger.Logger, history repo.PredictionHistory) *HistoryHandlers {
	return &HistoryHandlers{Logger: logger, History: history}
}

func (h *HistoryHandlers) ListPredictions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			http.Error(w, "limit must be a number between 1 and 200", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := h.History.Recent(r.Context(), limit)
	if err != nil {
		h.Logger.Error(fmt.Sprintf("Failed to list predictions: %v", err))
		http.Error(w, "Failed to list predictions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
