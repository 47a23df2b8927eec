package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"tabflow/internal/types"
)

var (
	bucketSessions = []byte("sessions")
	bucketAppState = []byte("app_state")
	keyAppState    = []byte("state")
)

type bboltRepository struct {
	db       *bolt.DB
	sessions SessionStore
	appState AppStateStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{
		db:       db,
		sessions: &bboltSessionStore{db: db},
		appState: &bboltAppStateStore{db: db},
	}, nil
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSessions, bucketAppState} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *bboltRepository) Sessions() SessionStore {
	return r.sessions
}

func (r *bboltRepository) AppState() AppStateStore {
	return r.appState
}

func (r *bboltRepository) Close() error {
	return r.db.Close()
}

type bboltSessionStore struct {
	db *bolt.DB
}

func (s *bboltSessionStore) List(ctx context.Context) ([]*types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []*types.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		return bucket.ForEach(func(_, raw []byte) error {
			var session types.Session
			if err := json.Unmarshal(raw, &session); err != nil {
				return err
			}
			out = append(out, &session)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *bboltSessionStore) Get(ctx context.Context, sessionID string) (*types.Session, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	var session *types.Session
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketSessions).Get([]byte(sessionID))
		if raw == nil {
			return nil
		}
		var decoded types.Session
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return err
		}
		session = &decoded
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return session, session != nil, nil
}

func (s *bboltSessionStore) Put(ctx context.Context, session *types.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil || session.ID == "" {
		return errors.New("session requires an id")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Put([]byte(session.ID), raw)
	})
}

func (s *bboltSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketSessions)
		if bucket.Get([]byte(sessionID)) == nil {
			return ErrSessionNotFound
		}
		return bucket.Delete([]byte(sessionID))
	})
}

type bboltAppStateStore struct {
	db *bolt.DB
}

func (s *bboltAppStateStore) Get(ctx context.Context) (types.AppState, error) {
	var state types.AppState
	if err := ctx.Err(); err != nil {
		return state, err
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketAppState).Get(keyAppState)
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &state)
	})
	return state, err
}

func (s *bboltAppStateStore) Put(ctx context.Context, state types.AppState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketAppState).Put(keyAppState, raw)
	})
}
