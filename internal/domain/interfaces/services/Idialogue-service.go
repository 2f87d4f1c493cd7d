package Iservices

import "para-predict/internal/domain/entities"

type OutcomeKind int

const (
	// OutcomeNextPrompt: the answer was recorded, Prompt carries the next question.
	OutcomeNextPrompt OutcomeKind = iota
	// OutcomeValidationError: the answer was rejected, the step did not move
	// and Field carries the question to re-issue verbatim.
	OutcomeValidationError
	// OutcomeRecordComplete: the final answer filled the script, Record holds
	// the ordered answers. The caller resets the dialogue only after the
	// completion reply has been dispatched.
	OutcomeRecordComplete
)

type DialogueOutcome struct {
	Kind   OutcomeKind
	Prompt string
	Field  entities.Field
	Record []entities.Answer
}

type IDialogueService interface {
	Begin(userID, variant string) (string, error)
	Advance(userID, text string) (DialogueOutcome, error)
	HasActive(userID string) (bool, error)
	Reset(userID string) error
}
