package store

import (
	"context"
	"errors"

	"tabflow/internal/types"
)

var ErrSessionNotFound = errors.New("session not found")

// Repository is the persistence collaborator. Sessions and their tabs are
// serialized verbatim; closed-tab history and per-tab workflow state are
// transient and never stored.
type Repository interface {
	Sessions() SessionStore
	AppState() AppStateStore
	Close() error
}

type SessionStore interface {
	List(ctx context.Context) ([]*types.Session, error)
	Get(ctx context.Context, sessionID string) (*types.Session, bool, error)
	Put(ctx context.Context, session *types.Session) error
	Delete(ctx context.Context, sessionID string) error
}

type AppStateStore interface {
	Get(ctx context.Context) (types.AppState, error)
	Put(ctx context.Context, state types.AppState) error
}
