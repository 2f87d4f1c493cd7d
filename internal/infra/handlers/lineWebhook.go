package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"para-predict/internal/botconfig"
	"para-predict/internal/domain/entities"
	repo "para-predict/internal/domain/interfaces/repository"
	Iservices "para-predict/internal/domain/interfaces/services"
	"para-predict/internal/infra/logger"
	"para-predict/internal/infra/provider"
	"para-predict/internal/infra/services"
	"para-predict/internal/util"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// externalCallTimeout bounds the weather and predictor calls so a slow
// upstream cannot hold a user's turn open indefinitely.
const externalCallTimeout = 10 * time.Second

type LineWebhookHandlers struct {
	Logger        *logger.Logger
	ChannelSecret string
	Messages      *botconfig.Provider
	Store         Iservices.ISessionStore
	Dialogue      Iservices.IDialogueService
	Weather       Iservices.IWeatherService
	Prediction    Iservices.IPredictionService
	Replies       *services.ReplyService
	Provider      provider.ILineProvider
	History       repo.PredictionHistory

	queue *userQueue
}

func NewLineWebhookHandlers(
	logger *logger.Logger,
	channelSecret string,
	messages *botconfig.Provider,
	store Iservices.ISessionStore,
	dialogue Iservices.IDialogueService,
	weather Iservices.IWeatherService,
	prediction Iservices.IPredictionService,
	replies *services.ReplyService,
	lineProvider provider.ILineProvider,
	history repo.PredictionHistory,
) *LineWebhookHandlers {
	return &LineWebhookHandlers{
		Logger:        logger,
		ChannelSecret: channelSecret,
		Messages:      messages,
		Store:         store,
		Dialogue:      dialogue,
		Weather:       weather,
		Prediction:    prediction,
		Replies:       replies,
		Provider:      lineProvider,
		History:       history,
		queue:         newUserQueue(),
	}
}

// Webhook receives the platform's event batch. Events are enqueued per user
// in batch order, so one user's turns apply in arrival order while distinct
// users proceed in parallel. One bad event never fails the rest of the batch.
func (h *LineWebhookHandlers) Webhook(w http.ResponseWriter, r *http.Request) {
	callback, err := webhook.ParseRequest(h.ChannelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to parse webhook request", http.StatusInternalServerError)
		return
	}

	for _, event := range callback.Events {
		h.dispatchEvent(event)
	}

	w.WriteHeader(http.StatusOK)
}

// dispatchEvent routes an event onto its user's serial queue. Every session
// mutation for a user, text turns and location saves alike, runs on the same
// queue. Events without a user source get their own goroutine.
func (h *LineWebhookHandlers) dispatchEvent(event webhook.EventInterface) {
	userID := eventUserID(event)
	if userID == "" {
		go h.handleEvent(event)
		return
	}
	h.queue.Enqueue(userID, func() { h.handleEvent(event) })
}

func (h *LineWebhookHandlers) handleEvent(event webhook.EventInterface) {
	defer func() {
		if r := recover(); r != nil {
			h.Logger.Error(fmt.Sprintf("Recovered from panic while handling event: %v", r))
		}
	}()

	switch e := event.(type) {
	case webhook.FollowEvent:
		h.reply(e.ReplyToken, h.Replies.Welcome())
	case webhook.MessageEvent:
		userID := sourceUserID(e.Source)
		if userID == "" {
			h.Logger.Warn("Message event without a user source, skipping")
			return
		}

		switch message := e.Message.(type) {
		case webhook.TextMessageContent:
			h.handleText(e.ReplyToken, userID, message.Text)
		case webhook.LocationMessageContent:
			h.handleLocation(e.ReplyToken, userID, message.Latitude, message.Longitude)
		default:
			// Stickers, images and the rest get the static help reply.
			h.reply(e.ReplyToken, h.Replies.Help())
		}
	}
}

func (h *LineWebhookHandlers) handleText(replyToken, userID, text string) {
	text = strings.TrimSpace(text)

	active, err := h.Dialogue.HasActive(userID)
	if err != nil {
		h.Logger.Error(fmt.Sprintf("Session lookup for %s failed: %v", userID, err))
		h.reply(replyToken, h.Replies.TransportApology())
		return
	}
	if active {
		h.handleAdvance(replyToken, userID, text)
		return
	}

	labels := h.Messages.Get().Labels
	switch {
	case text == labels.Predict:
		h.handleLocationPredict(replyToken, userID)
	case text == labels.MyLocation:
		h.handleMyLocation(replyToken, userID)
	case text == labels.Start || strings.EqualFold(text, "start"):
		h.handleBegin(replyToken, userID, entities.SchemaWeather)
	case text == labels.StartFull || strings.EqualFold(text, "full"):
		h.handleBegin(replyToken, userID, entities.SchemaFull)
	default:
		h.reply(replyToken, h.Replies.Help())
	}
}

func (h *LineWebhookHandlers) handleBegin(replyToken, userID, variant string) {
	prompt, err := h.Dialogue.Begin(userID, variant)
	if err != nil {
		h.Logger.Error(fmt.Sprintf("Begin dialogue for %s failed: %v", userID, err))
		h.reply(replyToken, h.Replies.TransportApology())
		return
	}
	h.reply(replyToken, h.Replies.Prompt(prompt))
}

func (h *LineWebhookHandlers) handleAdvance(replyToken, userID, text string) {
	outcome, err := h.Dialogue.Advance(userID, text)
	if err != nil {
		h.Logger.Error(fmt.Sprintf("Advance dialogue for %s failed: %v", userID, err))
		h.reply(replyToken, h.Replies.Help())
		return
	}

	switch outcome.Kind {
	case Iservices.OutcomeNextPrompt:
		h.reply(replyToken, h.Replies.Prompt(outcome.Prompt))
	case Iservices.OutcomeValidationError:
		h.reply(replyToken, h.Replies.InvalidAnswer(outcome.Field))
	case Iservices.OutcomeRecordComplete:
		h.completeRecord(replyToken, userID, outcome.Record)
	}
}

// completeRecord submits the assembled record and answers the user. The
// dialogue is reset only after the reply has been dispatched; manual-entry
// sessions are cleared even when the predictor call fails.
func (h *LineWebhookHandlers) completeRecord(replyToken, userID string, record []entities.Answer) {
	ctx, cancel := context.WithTimeout(context.Background(), externalCallTimeout)
	defer cancel()

	raw, err := h.Prediction.Predict(ctx, util.EnvData(record))
	switch {
	case errors.Is(err, Iservices.ErrMissingResult):
		h.reply(replyToken, h.Replies.MissingResult())
	case err != nil:
		h.reply(replyToken, h.Replies.TransportApology())
	default:
		h.reply(replyToken, h.Replies.Result(h.displayValue(raw)))
		h.recordHistory(userID, entities.SourceManual, raw)
	}

	if err := h.Dialogue.Reset(userID); err != nil {
		h.Logger.Error(fmt.Sprintf("Reset dialogue for %s failed: %v", userID, err))
	}
}

// handleLocationPredict runs the location flow: stored coordinate → weather
// snapshot → predictor. With no stored location the user is asked to share
// one and no upstream call is made. The location survives failures, so the
// user can retry immediately.
func (h *LineWebhookHandlers) handleLocationPredict(replyToken, userID string) {
	session, err := h.Store.GetOrCreate(userID)
	if err != nil {
		h.Logger.Error(fmt.Sprintf("Session lookup for %s failed: %v", userID, err))
		h.reply(replyToken, h.Replies.TransportApology())
		return
	}
	if session.Location == nil {
		h.reply(replyToken, h.Replies.NoLocation())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), externalCallTimeout)
	defer cancel()

	envData, err := h.Weather.Fetch(ctx, *session.Location)
	if err != nil {
		h.reply(replyToken, h.Replies.TransportApology())
		return
	}

	raw, err := h.Prediction.Predict(ctx, envData)
	switch {
	case errors.Is(err, Iservices.ErrMissingResult):
		h.reply(replyToken, h.Replies.MissingResult())
	case err != nil:
		h.reply(replyToken, h.Replies.TransportApology())
	default:
		h.reply(replyToken, h.Replies.Result(h.displayValue(raw)))
		h.recordHistory(userID, entities.SourceLocation, raw)
	}
}

func (h *LineWebhookHandlers) handleMyLocation(replyToken, userID string) {
	session, err := h.Store.GetOrCreate(userID)
	if err != nil {
		h.Logger.Error(fmt.Sprintf("Session lookup for %s failed: %v", userID, err))
		h.reply(replyToken, h.Replies.TransportApology())
		return
	}
	if session.Location == nil {
		h.reply(replyToken, h.Replies.NoLocation())
		return
	}
	h.reply(replyToken, h.Replies.StoredLocation(*session.Location))
}

func (h *LineWebhookHandlers) handleLocation(replyToken, userID string, latitude, longitude float64) {
	session, err := h.Store.GetOrCreate(userID)
	if err != nil {
		h.Logger.Error(fmt.Sprintf("Session lookup for %s failed: %v", userID, err))
		h.reply(replyToken, h.Replies.TransportApology())
		return
	}

	coord := entities.Coordinates{Latitude: latitude, Longitude: longitude}
	session.Location = &coord
	if err := h.Store.Save(userID, session); err != nil {
		h.Logger.Error(fmt.Sprintf("Save location for %s failed: %v", userID, err))
		h.reply(replyToken, h.Replies.TransportApology())
		return
	}

	h.reply(replyToken, h.Replies.LocationSaved(coord))
}

func (h *LineWebhookHandlers) displayValue(raw float64) string {
	return fmt.Sprintf("%.2f", h.Prediction.Normalize(raw))
}

func (h *LineWebhookHandlers) recordHistory(userID, source string, raw float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	record := entities.PredictionRecord{
		UserID:    userID,
		Source:    source,
		RawResult: raw,
		Result:    h.Prediction.Normalize(raw),
	}
	if err := h.History.Save(ctx, record); err != nil {
		h.Logger.Error(fmt.Sprintf("Failed to record prediction for %s: %v", userID, err))
	}
}

func (h *LineWebhookHandlers) reply(replyToken string, messages []messaging_api.MessageInterface) {
	if err := h.Provider.Reply(replyToken, messages); err != nil {
		h.Logger.Error(fmt.Sprintf("Failed to reply: %v", err))
	}
}

func eventUserID(event webhook.EventInterface) string {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return sourceUserID(e.Source)
	case webhook.FollowEvent:
		return sourceUserID(e.Source)
	}
	return ""
}

func sourceUserID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case *webhook.UserSource:
		return s.UserId
	}
	return ""
}
