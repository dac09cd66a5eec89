package service

import (
	"context"
	"sort"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/pkg/util"
)

const recentRequestsLimit = 5

type DashboardStats struct {
	Open        int                         `json:"open"`
	Verified    int                         `json:"verified"`
	Rejected    int                         `json:"rejected"`
	Revenue     int                         `json:"revenue"`
	PaidCount   int                         `json:"paidCount"`
	SLABreaches int                         `json:"slaBreaches"`
	Recent      []model.VerificationRequest `json:"recent"`
}

type DashboardService interface {
	Stats(ctx context.Context, filter RequestFilter) (*DashboardStats, error)
	Overdue(ctx context.Context) ([]model.VerificationRequest, error)
}

type dashboardService struct {
	requestService RequestService
	requestRepo    repository.RequestRepository
	clock          util.Clock
}

func NewDashboardService(requestService RequestService, requestRepo repository.RequestRepository, clock util.Clock) DashboardService {
	if clock == nil {
		clock = util.SystemClock{}
	}
	return &dashboardService{
		requestService: requestService,
		requestRepo:    requestRepo,
		clock:          clock,
	}
}

func (s *dashboardService) Stats(ctx context.Context, filter RequestFilter) (*DashboardStats, error) {
	requests, err := s.requestService.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	stats := &DashboardStats{}
	for i := range requests {
		r := &requests[i]
		switch r.Status {
		case model.RequestStatusInProgress:
			stats.Open++
		case model.RequestStatusVerified:
			stats.Verified++
		case model.RequestStatusRejected:
			stats.Rejected++
		}
		if r.Payment.Status == model.PaymentStatusPaid {
			stats.Revenue += r.Fee
			stats.PaidCount++
		}
		if r.IsOverdue(now) {
			stats.SLABreaches++
		}
	}

	// List is already newest first
	n := len(requests)
	if n > recentRequestsLimit {
		n = recentRequestsLimit
	}
	stats.Recent = requests[:n]
	return stats, nil
}

// Overdue lists in-progress requests past their due date, most overdue first
func (s *dashboardService) Overdue(ctx context.Context) ([]model.VerificationRequest, error) {
	requests, err := s.requestRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	overdue := make([]model.VerificationRequest, 0)
	for _, r := range requests {
		if r.IsOverdue(now) {
			overdue = append(overdue, r)
		}
	}
	sort.SliceStable(overdue, func(i, j int) bool {
		return overdue[i].DueAt.Before(overdue[j].DueAt)
	})
	return overdue, nil
}
