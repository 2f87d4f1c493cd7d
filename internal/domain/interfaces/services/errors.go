package Iservices

import "errors"

var (
	// ErrNoDialogue: Advance was called for a user with no script in progress.
	ErrNoDialogue = errors.New("no dialogue in progress")
	// ErrMissingResult: the predictor answered but without the result field.
	// Distinct from a transport failure; the user sees a different message.
	ErrMissingResult = errors.New("prediction response missing result")
)
