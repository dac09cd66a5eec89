package repository

import (
	"context"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/storage"
)

// SessionRepository keeps the signed-in user snapshot per session id
type SessionRepository interface {
	Save(ctx context.Context, sessionID string, session *model.Session) error
	Find(ctx context.Context, sessionID string) (*model.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionRepository struct {
	store storage.Store
}

func NewSessionRepository(store storage.Store) SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Save(ctx context.Context, sessionID string, session *model.Session) error {
	return r.store.Set(ctx, keySession+sessionID, session)
}

func (r *sessionRepository) Find(ctx context.Context, sessionID string) (*model.Session, error) {
	var session model.Session
	found, err := r.store.Get(ctx, keySession+sessionID, &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.store.Remove(ctx, keySession+sessionID)
}
