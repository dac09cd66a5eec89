package repository

import (
	"context"
	"sync"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/storage"
	"github.com/ikkim/eduverify-backend/pkg/logger"
)

// MutateFunc edits a request in place; returning an error aborts the write
type MutateFunc func(req *model.VerificationRequest) error

type RequestRepository interface {
	List(ctx context.Context) ([]model.VerificationRequest, error)
	FindByID(ctx context.Context, id string) (*model.VerificationRequest, error)
	Create(ctx context.Context, req *model.VerificationRequest) error
	Update(ctx context.Context, id string, mutate MutateFunc) (*model.VerificationRequest, error)
}

type requestRepository struct {
	store storage.Store
	mu    sync.Mutex
}

func NewRequestRepository(store storage.Store) RequestRepository {
	return &requestRepository{store: store}
}

func (r *requestRepository) List(ctx context.Context) ([]model.VerificationRequest, error) {
	return loadList[model.VerificationRequest](ctx, r.store, keyRequests)
}

func (r *requestRepository) FindByID(ctx context.Context, id string) (*model.VerificationRequest, error) {
	requests, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		if requests[i].ID == id {
			return &requests[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *requestRepository) Create(ctx context.Context, req *model.VerificationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	requests, err := r.List(ctx)
	if err != nil {
		return err
	}

	requests = append(requests, *req)
	if err := r.store.Set(ctx, keyRequests, requests); err != nil {
		logger.Error("Failed to persist request", err, map[string]interface{}{
			"request_id": req.ID,
		})
		return err
	}

	logger.Debug("Request created in storage", map[string]interface{}{
		"request_id": req.ID,
		"company_id": req.CompanyID,
	})
	return nil
}

// Update applies mutate to the stored request and writes the whole list back.
// The read-modify-write is serialized per repository.
func (r *requestRepository) Update(ctx context.Context, id string, mutate MutateFunc) (*model.VerificationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	requests, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range requests {
		if requests[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	updated := requests[idx]
	updated.Timeline = append([]model.TimelineEntry(nil), requests[idx].Timeline...)
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	requests[idx] = updated

	if err := r.store.Set(ctx, keyRequests, requests); err != nil {
		logger.Error("Failed to persist request update", err, map[string]interface{}{
			"request_id": id,
		})
		return nil, err
	}
	return &updated, nil
}
