package service

import (
	"context"
	"errors"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/pkg/logger"
	"github.com/ikkim/eduverify-backend/pkg/util"
)

type CandidateInput struct {
	FullName           string   `json:"fullName" validate:"required,min=2"`
	Mobile             string   `json:"mobile" validate:"required,phone"`
	Email              string   `json:"email" validate:"required,email"`
	DegreeName         string   `json:"degreeName" validate:"required,min=2"`
	PCNumber           string   `json:"pcNumber"`
	Initials           string   `json:"initials"`
	UniversityName     string   `json:"universityName" validate:"required,min=2"`
	EnrollmentOrRollNo string   `json:"enrollmentOrRollNo"`
	GraduationYear     *int     `json:"graduationYear" validate:"omitempty,min=1900,max=2100"`
	DocumentURLs       []string `json:"documentUrls"`
}

type CandidateService interface {
	List(ctx context.Context) ([]model.Candidate, error)
	Get(ctx context.Context, id string) (*model.Candidate, error)
	Create(ctx context.Context, input CandidateInput) (*model.Candidate, error)
}

type candidateService struct {
	repo    repository.CandidateRepository
	latency Latency
}

func NewCandidateService(repo repository.CandidateRepository, latency Latency) CandidateService {
	return &candidateService{repo: repo, latency: latency}
}

func (s *candidateService) List(ctx context.Context) ([]model.Candidate, error) {
	if err := wait(ctx, s.latency.CandidateList); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *candidateService) Get(ctx context.Context, id string) (*model.Candidate, error) {
	if err := wait(ctx, s.latency.CandidateGet); err != nil {
		return nil, err
	}

	candidate, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

func (s *candidateService) Create(ctx context.Context, input CandidateInput) (*model.Candidate, error) {
	if err := wait(ctx, s.latency.CandidateCreate); err != nil {
		return nil, err
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	documents := input.DocumentURLs
	if documents == nil {
		documents = []string{}
	}

	candidate := &model.Candidate{
		ID:                 util.NewID("candidate"),
		FullName:           input.FullName,
		Mobile:             input.Mobile,
		Email:              input.Email,
		DegreeName:         input.DegreeName,
		PCNumber:           input.PCNumber,
		Initials:           input.Initials,
		UniversityName:     input.UniversityName,
		EnrollmentOrRollNo: input.EnrollmentOrRollNo,
		GraduationYear:     input.GraduationYear,
		DocumentURLs:       documents,
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		logger.Error("Failed to create candidate", err, map[string]interface{}{
			"full_name": input.FullName,
		})
		return nil, err
	}

	logger.Info("Candidate created", map[string]interface{}{
		"candidate_id": candidate.ID,
		"university":   candidate.UniversityName,
	})
	return candidate, nil
}
