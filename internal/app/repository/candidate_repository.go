package repository

import (
	"context"
	"sync"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/storage"
	"github.com/ikkim/eduverify-backend/pkg/logger"
)

type CandidateRepository interface {
	List(ctx context.Context) ([]model.Candidate, error)
	FindByID(ctx context.Context, id string) (*model.Candidate, error)
	Create(ctx context.Context, candidate *model.Candidate) error
}

type candidateRepository struct {
	store storage.Store
	mu    sync.Mutex
}

func NewCandidateRepository(store storage.Store) CandidateRepository {
	return &candidateRepository{store: store}
}

func (r *candidateRepository) List(ctx context.Context) ([]model.Candidate, error) {
	return loadList[model.Candidate](ctx, r.store, keyCandidates)
}

func (r *candidateRepository) FindByID(ctx context.Context, id string) (*model.Candidate, error) {
	candidates, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if candidates[i].ID == id {
			return &candidates[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *candidateRepository) Create(ctx context.Context, candidate *model.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	candidates, err := r.List(ctx)
	if err != nil {
		return err
	}

	candidates = append(candidates, *candidate)
	if err := r.store.Set(ctx, keyCandidates, candidates); err != nil {
		logger.Error("Failed to persist candidate", err, map[string]interface{}{
			"candidate_id": candidate.ID,
		})
		return err
	}

	logger.Debug("Candidate created in storage", map[string]interface{}{
		"candidate_id": candidate.ID,
		"total":        len(candidates),
	})
	return nil
}
