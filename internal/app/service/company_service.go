package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/pkg/logger"
)

type CompanyUpdateInput struct {
	CompanyName   string `json:"companyName" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	Website       string `json:"website" validate:"omitempty,url"`
	ContactNumber string `json:"contactNumber" validate:"required,phone"`
	Address       string `json:"address" validate:"required,min=10"`
	BrandLogo     string `json:"brandLogo"`
	SLADays       int    `json:"slaDays" validate:"min=1,max=30"`
}

type CompanyService interface {
	Get(ctx context.Context, id string) (*model.Company, error)
	Update(ctx context.Context, actor *model.Session, input CompanyUpdateInput) (*model.Company, error)
}

type companyService struct {
	repo    repository.CompanyRepository
	latency Latency
}

func NewCompanyService(repo repository.CompanyRepository, latency Latency) CompanyService {
	return &companyService{repo: repo, latency: latency}
}

func (s *companyService) Get(ctx context.Context, id string) (*model.Company, error) {
	account, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	company := account.Company
	return &company, nil
}

func (s *companyService) load(ctx context.Context, id string) (*model.CompanyAccount, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if id == DemoCompanyID {
		return &model.CompanyAccount{Company: DemoCompany()}, nil
	}
	return nil, ErrCompanyNotFound
}

// Update rewrites the actor's company profile. Existing requests keep their due dates.
func (s *companyService) Update(ctx context.Context, actor *model.Session, input CompanyUpdateInput) (*model.Company, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	if err := wait(ctx, s.latency.CompanyUpdate); err != nil {
		return nil, err
	}

	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	account, err := s.load(ctx, actor.Company.ID)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(account.Email, input.Email) {
		other, err := s.repo.FindByEmail(ctx, input.Email)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if (other != nil && other.ID != account.ID) || isDemoEmail(input.Email) {
			return nil, ErrEmailAlreadyExists
		}
	}

	account.CompanyName = input.CompanyName
	account.Email = input.Email
	account.Website = input.Website
	account.ContactNumber = input.ContactNumber
	account.Address = input.Address
	account.BrandLogo = input.BrandLogo
	account.SLADays = input.SLADays

	if err := s.repo.Save(ctx, account); err != nil {
		logger.Error("Failed to update company", err, map[string]interface{}{
			"company_id": account.ID,
		})
		return nil, err
	}

	logger.Info("Company settings updated", map[string]interface{}{
		"company_id": account.ID,
		"sla_days":   account.SLADays,
		"by":         actor.User.ID,
	})

	company := account.Company
	return &company, nil
}
