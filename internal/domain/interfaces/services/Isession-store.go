package Iservices

import "para-predict/internal/domain/entities"

// ISessionStore owns the per-user conversational state. GetOrCreate never
// fails on a missing user: a fresh, empty session is returned instead.
type ISessionStore interface {
	GetOrCreate(userID string) (entities.Session, error)
	Save(userID string, session entities.Session) error
	// ResetDialogue removes the dialogue part of the session entirely so the
	// next interaction starts a brand-new script. The stored location is kept.
	ResetDialogue(userID string) error
}
