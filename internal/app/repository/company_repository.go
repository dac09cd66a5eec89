package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/storage"
	"github.com/ikkim/eduverify-backend/pkg/logger"
)

type CompanyRepository interface {
	List(ctx context.Context) ([]model.CompanyAccount, error)
	Create(ctx context.Context, account *model.CompanyAccount) error
	FindByID(ctx context.Context, id string) (*model.CompanyAccount, error)
	FindByEmail(ctx context.Context, email string) (*model.CompanyAccount, error)
	Save(ctx context.Context, account *model.CompanyAccount) error
}

type companyRepository struct {
	store storage.Store
	mu    sync.Mutex
}

func NewCompanyRepository(store storage.Store) CompanyRepository {
	return &companyRepository{store: store}
}

func (r *companyRepository) List(ctx context.Context) ([]model.CompanyAccount, error) {
	return loadList[model.CompanyAccount](ctx, r.store, keyCompanies)
}

// Create appends a company; emails are unique case-insensitively
func (r *companyRepository) Create(ctx context.Context, account *model.CompanyAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	companies, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range companies {
		if strings.EqualFold(c.Email, account.Email) {
			return ErrDuplicateEmail
		}
	}

	companies = append(companies, *account)
	if err := r.store.Set(ctx, keyCompanies, companies); err != nil {
		logger.Error("Failed to persist company", err, map[string]interface{}{
			"company_id": account.ID,
		})
		return err
	}

	logger.Debug("Company created in storage", map[string]interface{}{
		"company_id": account.ID,
		"email":      account.Email,
	})
	return nil
}

func (r *companyRepository) FindByID(ctx context.Context, id string) (*model.CompanyAccount, error) {
	companies, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range companies {
		if companies[i].ID == id {
			return &companies[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *companyRepository) FindByEmail(ctx context.Context, email string) (*model.CompanyAccount, error) {
	companies, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range companies {
		if strings.EqualFold(companies[i].Email, email) {
			return &companies[i], nil
		}
	}
	return nil, ErrNotFound
}

// Save replaces the company with the same id, or appends it when absent
func (r *companyRepository) Save(ctx context.Context, account *model.CompanyAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	companies, err := r.List(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range companies {
		if companies[i].ID == account.ID {
			companies[i] = *account
			replaced = true
			break
		}
	}
	if !replaced {
		companies = append(companies, *account)
	}

	if err := r.store.Set(ctx, keyCompanies, companies); err != nil {
		logger.Error("Failed to persist company", err, map[string]interface{}{
			"company_id": account.ID,
		})
		return err
	}
	return nil
}
