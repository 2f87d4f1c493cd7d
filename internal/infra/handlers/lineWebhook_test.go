package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"para-predict/internal/botconfig"
	"para-predict/internal/domain/entities"
	"para-predict/internal/infra/logger"
	"para-predict/internal/infra/repository"
	"para-predict/internal/infra/services"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMessages = `
welcome: "hello"
help: "help text"
ask_location: "share please"
location_saved: "saved (%.4f, %.4f)"
location_stored: "stored (%.4f, %.4f)"
no_location: "no location yet"
invalid_date: "bad date"
invalid_number: "bad number for %s"
predict_result: "result %s"
predict_missing: "missing result"
predict_failed: "predictor down"
labels:
  predict: "predict"
  my_location: "my location"
  help: "help"
  start: "start"
  start_full: "full"
  share_location: "share"
sticker:
  package_id: "11537"
  sticker_id: "52002734"
`

type fakeProvider struct {
	mu      sync.Mutex
	replies []capturedReply
}

type capturedReply struct {
	token    string
	messages []messaging_api.MessageInterface
}

func (f *fakeProvider) Reply(token string, messages []messaging_api.MessageInterface) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, capturedReply{token: token, messages: messages})
	return nil
}

func (f *fakeProvider) last(t *testing.T) capturedReply {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.replies)
	return f.replies[len(f.replies)-1]
}

func (f *fakeProvider) lastText(t *testing.T) string {
	t.Helper()
	reply := f.last(t)
	var parts []string
	for _, message := range reply.messages {
		if text, ok := message.(messaging_api.TextMessage); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

type fakeHistory struct {
	mu      sync.Mutex
	records []entities.PredictionRecord
}

func (f *fakeHistory) Save(_ context.Context, record entities.PredictionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, _ int) ([]entities.PredictionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, nil
}

func (f *fakeHistory) Close() error { return nil }

type testBot struct {
	handlers      *LineWebhookHandlers
	provider      *fakeProvider
	history       *fakeHistory
	weatherCalls  *atomic.Int64
	predictCalls  *atomic.Int64
	predictorBody string
}

func newTestBot(t *testing.T, predictorBody string) *testBot {
	t.Helper()

	log := logger.NewLogger(false)

	path := filepath.Join(t.TempDir(), "messages.yml")
	require.NoError(t, os.WriteFile(path, []byte(testMessages), 0o644))
	messages, err := botconfig.Load(path)
	require.NoError(t, err)

	store, err := repository.NewSessionCache(log)
	require.NoError(t, err)

	bot := &testBot{
		provider:      &fakeProvider{},
		history:       &fakeHistory{},
		weatherCalls:  &atomic.Int64{},
		predictCalls:  &atomic.Int64{},
		predictorBody: predictorBody,
	}

	weatherServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bot.weatherCalls.Add(1)
		fmt.Fprint(w, `{"wind":{"speed":3.6},"main":{"temp_max":34,"temp":30,"temp_min":27,"humidity":78}}`)
	}))
	t.Cleanup(weatherServer.Close)

	predictorServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bot.predictCalls.Add(1)
		fmt.Fprint(w, bot.predictorBody)
	}))
	t.Cleanup(predictorServer.Close)

	dialogueSvc := services.NewDialogueService(store, log)
	weatherSvc := services.NewWeatherService(log, weatherServer.Client(), weatherServer.URL, "key")
	predictionSvc := services.NewPredictionService(log, predictorServer.Client(), predictorServer.URL)
	replySvc := services.NewReplyService(messages)

	bot.handlers = NewLineWebhookHandlers(
		log, "secret", messages, store,
		dialogueSvc, weatherSvc, predictionSvc, replySvc,
		bot.provider, bot.history,
	)
	return bot
}

func TestPredictWithoutLocationMakesNoUpstreamCall(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	bot.handlers.handleText("token-1", "U1", "predict")

	assert.Contains(t, bot.provider.lastText(t), "no location yet")
	assert.Equal(t, int64(0), bot.weatherCalls.Load())
	assert.Equal(t, int64(0), bot.predictCalls.Load())
}

func TestLocationFlow(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	bot.handlers.handleLocation("token-1", "U1", 13.75, 100.5)
	assert.Contains(t, bot.provider.lastText(t), "saved (13.7500, 100.5000)")

	bot.handlers.handleText("token-2", "U1", "predict")

	assert.Equal(t, "result 2.00", bot.provider.lastText(t))
	assert.Equal(t, int64(1), bot.weatherCalls.Load())
	assert.Equal(t, int64(1), bot.predictCalls.Load())

	require.Len(t, bot.history.records, 1)
	assert.Equal(t, entities.SourceLocation, bot.history.records[0].Source)
	assert.Equal(t, 50.0, bot.history.records[0].RawResult)
	assert.Equal(t, 2.0, bot.history.records[0].Result)

	// Location survives, an immediate retry works.
	bot.handlers.handleText("token-3", "U1", "predict")
	assert.Equal(t, "result 2.00", bot.provider.lastText(t))
}

func TestManualFlowCompletion(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	bot.handlers.handleText("token-0", "U1", "start")
	assert.Equal(t, entities.WeatherSchema().Fields[0].Prompt, bot.provider.lastText(t))

	values := []string{"10", "8", "5", "32", "28", "24", "90", "80", "70", "5"}
	for i, value := range values {
		bot.handlers.handleText(fmt.Sprintf("token-%d", i+1), "U1", value)
	}

	assert.Equal(t, "result 2.00", bot.provider.lastText(t))
	assert.Equal(t, int64(1), bot.predictCalls.Load(), "exactly one prediction request per completed record")
	assert.Equal(t, int64(0), bot.weatherCalls.Load())

	require.Len(t, bot.history.records, 1)
	assert.Equal(t, entities.SourceManual, bot.history.records[0].Source)

	// Session is gone: the next text is a plain command again.
	active, err := bot.handlers.Dialogue.HasActive("U1")
	require.NoError(t, err)
	assert.False(t, active)
}

func TestManualFlowInvalidAnswerRepeatsPrompt(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	bot.handlers.handleText("token-0", "U1", "start")
	bot.handlers.handleText("token-1", "U1", "abc")

	text := bot.provider.lastText(t)
	assert.Contains(t, text, "MaxWind")
	assert.Contains(t, text, entities.WeatherSchema().Fields[0].Prompt)
}

func TestMissingResultIsDistinctReply(t *testing.T) {
	bot := newTestBot(t, `{"status": "ok"}`)

	bot.handlers.handleLocation("token-1", "U1", 13.75, 100.5)
	bot.handlers.handleText("token-2", "U1", "predict")

	assert.Contains(t, bot.provider.lastText(t), "missing result")
	assert.Empty(t, bot.history.records)
}

func TestManualFlowClearsSessionOnPredictorFailure(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	// Point the predictor at a dead endpoint after setup.
	deadServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadServer.Close()
	log := logger.NewLogger(false)
	bot.handlers.Prediction = services.NewPredictionService(log, &http.Client{}, deadServer.URL)

	bot.handlers.handleText("token-0", "U1", "start")
	for i, value := range []string{"10", "8", "5", "32", "28", "24", "90", "80", "70", "5"} {
		bot.handlers.handleText(fmt.Sprintf("token-%d", i+1), "U1", value)
	}

	assert.Contains(t, bot.provider.lastText(t), "predictor down")

	active, err := bot.handlers.Dialogue.HasActive("U1")
	require.NoError(t, err)
	assert.False(t, active, "manual session is cleared even on failure")
}

func TestUnknownTextGetsHelp(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	bot.handlers.handleText("token-1", "U1", "what can you do?")
	assert.Contains(t, bot.provider.lastText(t), "help text")
}

func TestNonTextMessageGetsHelp(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	bot.handlers.handleEvent(webhook.MessageEvent{
		ReplyToken: "token-1",
		Source:     webhook.UserSource{UserId: "U1"},
		Message:    webhook.StickerMessageContent{PackageId: "1", StickerId: "2"},
	})

	assert.Contains(t, bot.provider.lastText(t), "help text")
}

func textEvent(token, userID, text string) webhook.MessageEvent {
	return webhook.MessageEvent{
		ReplyToken: token,
		Source:     webhook.UserSource{UserId: userID},
		Message:    webhook.TextMessageContent{Text: text},
	}
}

func locationEvent(token, userID string, latitude, longitude float64) webhook.MessageEvent {
	return webhook.MessageEvent{
		ReplyToken: token,
		Source:     webhook.UserSource{UserId: userID},
		Message:    webhook.LocationMessageContent{Latitude: latitude, Longitude: longitude},
	}
}

func TestMyLocationReportsStoredCoordinate(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	bot.handlers.handleLocation("token-1", "U1", 13.75, 100.5)
	bot.handlers.handleText("token-2", "U1", "my location")

	assert.Equal(t, "stored (13.7500, 100.5000)", bot.provider.lastText(t))
}

func TestConcurrentLocationSavesDoNotEraseDialogueTurns(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	bot.handlers.dispatchEvent(textEvent("token-0", "U1", "start"))

	answers := []string{"10", "8", "5", "32", "28", "24", "90", "80", "70"}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i, value := range answers {
			bot.handlers.dispatchEvent(textEvent(fmt.Sprintf("token-%d", i+1), "U1", value))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			bot.handlers.dispatchEvent(locationEvent(fmt.Sprintf("loc-%d", i), "U1", 13.75, 100.5))
		}
	}()
	wg.Wait()

	require.Eventually(t, func() bool {
		session, err := bot.handlers.Store.GetOrCreate("U1")
		return err == nil && session.Dialogue != nil && session.Dialogue.Step == len(answers)
	}, 2*time.Second, 5*time.Millisecond, "every answer must survive interleaved location saves")

	session, err := bot.handlers.Store.GetOrCreate("U1")
	require.NoError(t, err)
	require.Len(t, session.Dialogue.Answers, len(answers))
	for i, answer := range answers {
		assert.Equal(t, answer, session.Dialogue.Answers[i].Value)
	}
	require.NotNil(t, session.Location)
	assert.Equal(t, 13.75, session.Location.Latitude)
}

func TestBatchTurnsApplyInArrivalOrder(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	events := []webhook.EventInterface{
		textEvent("token-0", "U1", "start"),
		textEvent("token-1", "U1", "10"),
		textEvent("token-2", "U1", "8"),
		textEvent("token-3", "U1", "5"),
	}
	for _, event := range events {
		bot.handlers.dispatchEvent(event)
	}

	require.Eventually(t, func() bool {
		session, err := bot.handlers.Store.GetOrCreate("U1")
		return err == nil && session.Dialogue != nil && session.Dialogue.Step == 3
	}, 2*time.Second, 5*time.Millisecond)

	session, err := bot.handlers.Store.GetOrCreate("U1")
	require.NoError(t, err)
	for i, want := range []string{"10", "8", "5"} {
		assert.Equal(t, want, session.Dialogue.Answers[i].Value)
	}
}

func TestFollowEventSendsWelcomeSticker(t *testing.T) {
	bot := newTestBot(t, `{"result": 50}`)

	bot.handlers.handleEvent(webhook.FollowEvent{ReplyToken: "token-1"})

	reply := bot.provider.last(t)
	require.Len(t, reply.messages, 2)
	_, ok := reply.messages[1].(messaging_api.StickerMessage)
	assert.True(t, ok)
}
