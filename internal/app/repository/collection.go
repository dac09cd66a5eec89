package repository

import (
	"context"
	"errors"

	"github.com/ikkim/eduverify-backend/internal/storage"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const (
	keyCompanies  = "companies"
	keyCandidates = "candidates"
	keyRequests   = "requests"
	keySession    = "session:"
)

// loadList reads a persisted JSON array; a missing key is an empty list
func loadList[T any](ctx context.Context, s storage.Store, key string) ([]T, error) {
	var items []T
	found, err := s.Get(ctx, key, &items)
	if err != nil {
		return nil, err
	}
	if !found || items == nil {
		items = []T{}
	}
	return items, nil
}
