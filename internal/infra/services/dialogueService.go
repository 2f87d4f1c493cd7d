package services

import (
	"fmt"
	"strings"
	"sync"

	"para-predict/internal/domain/entities"
	Iservices "para-predict/internal/domain/interfaces/services"
	"para-predict/internal/infra/logger"
	"para-predict/internal/util"
)

// DialogueService is the per-user state machine. Each inbound text advances
// the user's script by at most one step; invalid answers leave the step
// untouched so the same question is asked again.
type DialogueService struct {
	Store  Iservices.ISessionStore
	Logger *logger.Logger

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

func NewDialogueService(store Iservices.ISessionStore, logger *logger.Logger) *DialogueService {
	return &DialogueService{
		Store:  store,
		Logger: logger,
		users:  make(map[string]*sync.Mutex),
	}
}

// userLock serializes turns of a single user. Turns from distinct users never
// share a lock, so one user's external calls cannot stall another's dialogue.
func (ds *DialogueService) userLock(userID string) *sync.Mutex {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	lock, ok := ds.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		ds.users[userID] = lock
	}
	return lock
}

// Begin starts a fresh script for the user and returns the first prompt.
// The message that triggered the start is never treated as an answer.
func (ds *DialogueService) Begin(userID, variant string) (string, error) {
	lock := ds.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	schema, ok := entities.SchemaByName(variant)
	if !ok {
		return "", fmt.Errorf("unknown dialogue variant %q", variant)
	}

	session, err := ds.Store.GetOrCreate(userID)
	if err != nil {
		return "", err
	}

	session.Dialogue = &entities.DialogueState{Variant: variant}
	if err := ds.Store.Save(userID, session); err != nil {
		return "", err
	}

	return schema.Fields[0].Prompt, nil
}

// Advance validates and records one answer. The outcome tells the caller
// what to reply; on completion the dialogue is left in place until the
// caller has dispatched the reply and calls Reset.
func (ds *DialogueService) Advance(userID, text string) (Iservices.DialogueOutcome, error) {
	lock := ds.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := ds.Store.GetOrCreate(userID)
	if err != nil {
		return Iservices.DialogueOutcome{}, err
	}
	if session.Dialogue == nil {
		return Iservices.DialogueOutcome{}, Iservices.ErrNoDialogue
	}

	dialogue := session.Dialogue
	schema, ok := entities.SchemaByName(dialogue.Variant)
	if !ok {
		// Stored variant no longer exists; drop the broken state.
		if resetErr := ds.Store.ResetDialogue(userID); resetErr != nil {
			ds.Logger.Warn(fmt.Sprintf("Reset of broken dialogue for %s failed: %v", userID, resetErr))
		}
		return Iservices.DialogueOutcome{}, fmt.Errorf("dialogue for %s has unknown variant %q", userID, dialogue.Variant)
	}

	field, awaiting := dialogue.Awaiting()
	if !awaiting {
		return Iservices.DialogueOutcome{}, fmt.Errorf("dialogue for %s is already complete", userID)
	}

	if !validAnswer(field.Kind, text) {
		return Iservices.DialogueOutcome{Kind: Iservices.OutcomeValidationError, Field: field}, nil
	}

	dialogue.Answers = append(dialogue.Answers, entities.Answer{Key: field.Key, Value: strings.TrimSpace(text)})
	dialogue.Step++

	if err := ds.Store.Save(userID, session); err != nil {
		return Iservices.DialogueOutcome{}, err
	}

	if dialogue.Complete() {
		return Iservices.DialogueOutcome{Kind: Iservices.OutcomeRecordComplete, Record: dialogue.Answers}, nil
	}

	return Iservices.DialogueOutcome{
		Kind:   Iservices.OutcomeNextPrompt,
		Prompt: schema.Fields[dialogue.Step].Prompt,
	}, nil
}

func (ds *DialogueService) HasActive(userID string) (bool, error) {
	session, err := ds.Store.GetOrCreate(userID)
	if err != nil {
		return false, err
	}
	return session.Dialogue != nil, nil
}

func (ds *DialogueService) Reset(userID string) error {
	lock := ds.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return ds.Store.ResetDialogue(userID)
}

func validAnswer(kind entities.ValidatorKind, text string) bool {
	switch kind {
	case entities.KindDate:
		return util.IsValidDate(text)
	default:
		return util.IsValidNumber(text)
	}
}
