package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"para-predict/internal/botconfig"
	"para-predict/internal/config"
	"para-predict/internal/domain/entities"
	Iservices "para-predict/internal/domain/interfaces/services"
	"para-predict/internal/infra/handlers"
	"para-predict/internal/infra/logger"
	"para-predict/internal/infra/provider"
	"para-predict/internal/infra/repository"
	"para-predict/internal/infra/routes"
	"para-predict/internal/infra/services"
	"para-predict/internal/middleware"
	client "para-predict/internal/pkg"

	"github.com/gorilla/mux"
)

func main() {
	config.LoadEnv()

	log := logger.NewLogger(true)

	for _, schema := range []entities.Schema{entities.FullSchema(), entities.WeatherSchema()} {
		if err := schema.Validate(); err != nil {
			log.Fatal(fmt.Sprintf("Invalid dialogue schema: %v", err))
		}
	}

	sessions, err := repository.NewSessionCache(log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to create session cache: %v", err))
	}

	history, err := repository.NewSQLiteHistory(config.GetEnvOrDefault("DB_PATH", "./data/predictions.db"))
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to open prediction history: %v", err))
	}
	defer history.Close()

	messages, err := botconfig.Load(config.GetEnvOrDefault("BOT_MESSAGES", "./messages.yml"))
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to load messages config: %v", err))
	}
	watcher, err := messages.Watch(log)
	if err != nil {
		log.Warn(fmt.Sprintf("Messages config watcher not started: %v", err))
	} else {
		defer watcher.Close()
	}

	lineAPI := client.LineClient()
	lineProvider := provider.NewLineProvider(log, lineAPI)

	httpClient := &http.Client{Timeout: 8 * time.Second}

	var store Iservices.ISessionStore = sessions
	var dialogueSvc Iservices.IDialogueService = services.NewDialogueService(store, log)
	var weatherSvc Iservices.IWeatherService = services.NewWeatherService(
		log,
		httpClient,
		config.GetEnvOrDefault("WEATHER_API_URL", "https://api.openweathermap.org/data/2.5/weather"),
		config.GetEnv("WEATHER_API_KEY"),
	)
	var predictionSvc Iservices.IPredictionService = services.NewPredictionService(log, httpClient, config.GetEnv("PREDICTOR_URL"))
	replySvc := services.NewReplyService(messages)

	webhookHandlers := handlers.NewLineWebhookHandlers(
		log,
		config.GetEnv("LINE_CHANNEL_SECRET"),
		messages,
		store,
		dialogueSvc,
		weatherSvc,
		predictionSvc,
		replySvc,
		lineProvider,
		history,
	)
	historyHandlers := handlers.NewHistoryHandlers(log, history)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))

	appRoutes := routes.NewRoutes(router, webhookHandlers, historyHandlers)
	appRoutes.Init()

	port := config.GetEnvOrDefault("PORT", "8080")
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	go func() {
		log.Info(fmt.Sprintf("Server is running on port %s", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(fmt.Sprintf("Error running HTTP server: %s", err))
			os.Exit(1)
		}
	}()

	<-stop
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(fmt.Sprintf("Server forced to shutdown: %v", err))
	} else {
		log.Info("Server stopped gracefully.")
	}
}
