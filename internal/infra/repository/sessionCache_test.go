package repository

import (
	"testing"

	"para-predict/internal/domain/entities"
	"para-predict/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *SessionCache {
	t.Helper()
	cache, err := NewSessionCache(logger.NewLogger(false))
	require.NoError(t, err)
	return cache
}

func TestGetOrCreateReturnsFreshSession(t *testing.T) {
	cache := newTestCache(t)

	session, err := cache.GetOrCreate("U1")
	require.NoError(t, err)
	assert.Nil(t, session.Dialogue)
	assert.Nil(t, session.Location)
}

func TestSaveRoundTrip(t *testing.T) {
	cache := newTestCache(t)

	session := entities.Session{
		Dialogue: &entities.DialogueState{
			Variant: entities.SchemaWeather,
			Step:    2,
			Answers: []entities.Answer{
				{Key: "MaxWind", Value: "10"},
				{Key: "AvgWind", Value: "8"},
			},
		},
		Location: &entities.Coordinates{Latitude: 13.75, Longitude: 100.5},
	}
	require.NoError(t, cache.Save("U1", session))

	got, err := cache.GetOrCreate("U1")
	require.NoError(t, err)
	require.NotNil(t, got.Dialogue)
	assert.Equal(t, 2, got.Dialogue.Step)
	assert.Equal(t, "AvgWind", got.Dialogue.Answers[1].Key)
	require.NotNil(t, got.Location)
	assert.Equal(t, 13.75, got.Location.Latitude)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestResetDialogueKeepsLocation(t *testing.T) {
	cache := newTestCache(t)

	session := entities.Session{
		Dialogue: &entities.DialogueState{Variant: entities.SchemaWeather, Step: 1},
		Location: &entities.Coordinates{Latitude: 7.0, Longitude: 100.0},
	}
	require.NoError(t, cache.Save("U1", session))
	require.NoError(t, cache.ResetDialogue("U1"))

	got, err := cache.GetOrCreate("U1")
	require.NoError(t, err)
	assert.Nil(t, got.Dialogue)
	require.NotNil(t, got.Location)
	assert.Equal(t, 7.0, got.Location.Latitude)
}

func TestResetDialogueOnUnknownUserIsNoop(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.ResetDialogue("ghost"))
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Save("U1", entities.Session{
		Dialogue: &entities.DialogueState{Variant: entities.SchemaWeather, Step: 3},
	}))
	require.NoError(t, cache.Save("U2", entities.Session{
		Dialogue: &entities.DialogueState{Variant: entities.SchemaFull, Step: 1},
	}))

	first, err := cache.GetOrCreate("U1")
	require.NoError(t, err)
	second, err := cache.GetOrCreate("U2")
	require.NoError(t, err)

	assert.Equal(t, 3, first.Dialogue.Step)
	assert.Equal(t, entities.SchemaFull, second.Dialogue.Variant)
}
