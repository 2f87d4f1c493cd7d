package routes

import (
	"encoding/json"
	"net/http"

	"para-predict/internal/infra/handlers"

	"github.com/gorilla/mux"
)

type Routes struct {
	Mux     *mux.Router
	Webhook *handlers.LineWebhookHandlers
	History *handlers.HistoryHandlers
}

func NewRoutes(mux *mux.Router, webhook *handlers.LineWebhookHandlers, history *handlers.HistoryHandlers) *Routes {
	return &Routes{Mux: mux, Webhook: webhook, History: history}
}

func (r *Routes) Init() {
	r.Mux.HandleFunc("/webhook", r.Webhook.Webhook).Methods(http.MethodPost)

	r.Mux.HandleFunc("/predictions", r.History.ListPredictions).Methods(http.MethodGet)

	r.Mux.HandleFunc("/healthCheck", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods(http.MethodGet)
}
