package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/pkg/logger"
	"github.com/ikkim/eduverify-backend/pkg/util"
)

// RequestFilter narrows List. Zero values match everything.
type RequestFilter struct {
	Status     model.RequestStatus
	University string
	Query      string
	DateFrom   *time.Time
	DateTo     *time.Time
	CompanyID  string
}

type CreateRequestInput struct {
	CandidateID string `json:"candidateId" validate:"required"`
}

// PaymentUpdate records a gateway outcome on a request
type PaymentUpdate struct {
	Status model.PaymentStatus `json:"status"`
	TxnID  string              `json:"txnId"`
	PaidAt *time.Time          `json:"paidAt"`
	Method model.PaymentMethod `json:"method"`
}

type PaymentPatch struct {
	Amount   *int                 `json:"amount"`
	Currency *string              `json:"currency"`
	Status   *model.PaymentStatus `json:"status"`
	TxnID    *string              `json:"txnId"`
	PaidAt   *time.Time           `json:"paidAt"`
	Method   *model.PaymentMethod `json:"method"`
}

type CheckPatch struct {
	Substatus      *model.CheckSubstatus `json:"substatus"`
	RegistrarEmail *string               `json:"registrarEmail"`
	RegistrarPhone *string               `json:"registrarPhone"`
	Notes          *string               `json:"notes"`
	EvidenceURLs   []string              `json:"evidenceUrls"`
}

// RequestPatch is a partial update. Identity, fee, dates and the timeline are not patchable.
type RequestPatch struct {
	Status          *model.RequestStatus `json:"status"`
	RejectionReason *string              `json:"rejectionReason"`
	Payment         *PaymentPatch        `json:"payment"`
	Check           *CheckPatch          `json:"check"`
}

type RequestService interface {
	List(ctx context.Context, filter RequestFilter) ([]model.VerificationRequest, error)
	Get(ctx context.Context, id string) (*model.VerificationRequest, error)
	Create(ctx context.Context, actor *model.Session, input CreateRequestInput) (*model.VerificationRequest, error)
	Update(ctx context.Context, id string, patch RequestPatch) (*model.VerificationRequest, error)
	SetStatus(ctx context.Context, actor *model.Session, id string, status model.RequestStatus, reason string) (*model.VerificationRequest, error)
	UpdatePayment(ctx context.Context, actor *model.Session, id string, update PaymentUpdate) (*model.VerificationRequest, error)
	UpdateCheck(ctx context.Context, actor *model.Session, id string, patch CheckPatch) (*model.VerificationRequest, error)
	CanRecordPayment(status model.RequestStatus) bool
}

type requestService struct {
	requestRepo   repository.RequestRepository
	candidateRepo repository.CandidateRepository
	policy        TransitionPolicy
	events        EventPublisher
	clock         util.Clock
	latency       Latency
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	candidateRepo repository.CandidateRepository,
	policy TransitionPolicy,
	events EventPublisher,
	clock util.Clock,
	latency Latency,
) RequestService {
	if policy == nil {
		policy = PermissivePolicy()
	}
	if events == nil {
		events = NopPublisher()
	}
	if clock == nil {
		clock = util.SystemClock{}
	}
	return &requestService{
		requestRepo:   requestRepo,
		candidateRepo: candidateRepo,
		policy:        policy,
		events:        events,
		clock:         clock,
		latency:       latency,
	}
}

// CanRecordPayment reports whether a payment outcome may be recorded for a request in this status
func (s *requestService) CanRecordPayment(status model.RequestStatus) bool {
	return s.policy.CanRecordPayment(status)
}

// CanAccess reports whether the actor may see requests of the given company
func CanAccess(actor *model.Session, companyID string) bool {
	if actor == nil {
		return false
	}
	return actor.User.Role == model.RoleVerifier || actor.Company.ID == companyID
}

// ScopeFilter restricts employers to their own company
func ScopeFilter(actor *model.Session, filter RequestFilter) RequestFilter {
	if actor != nil && actor.User.Role == model.RoleEmployer {
		filter.CompanyID = actor.Company.ID
	}
	return filter
}

func (s *requestService) List(ctx context.Context, filter RequestFilter) ([]model.VerificationRequest, error) {
	if err := wait(ctx, s.latency.RequestList); err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var candidates map[string]model.Candidate
	if filter.University != "" || filter.Query != "" {
		candidates, err = s.candidateIndex(ctx)
		if err != nil {
			return nil, err
		}
	}

	result := make([]model.VerificationRequest, 0, len(requests))
	for _, r := range requests {
		if matchesFilter(r, filter, candidates) {
			result = append(result, r)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *requestService) candidateIndex(ctx context.Context) (map[string]model.Candidate, error) {
	candidates, err := s.candidateRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]model.Candidate, len(candidates))
	for _, c := range candidates {
		index[c.ID] = c
	}
	return index, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func matchesFilter(r model.VerificationRequest, f RequestFilter, candidates map[string]model.Candidate) bool {
	if f.CompanyID != "" && r.CompanyID != f.CompanyID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.DateFrom != nil && r.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.CreatedAt.After(*f.DateTo) {
		return false
	}

	candidate, hasCandidate := candidates[r.CandidateID]
	if f.University != "" {
		if !hasCandidate || !containsFold(candidate.UniversityName, f.University) {
			return false
		}
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		matched := containsFold(r.ID, q)
		if !matched && hasCandidate {
			matched = containsFold(candidate.FullName, q) || containsFold(candidate.UniversityName, q)
		}
		if !matched {
			return false
		}
	}
	return true
}

func (s *requestService) Get(ctx context.Context, id string) (*model.VerificationRequest, error) {
	if err := wait(ctx, s.latency.RequestGet); err != nil {
		return nil, err
	}

	req, err := s.requestRepo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *requestService) Create(ctx context.Context, actor *model.Session, input CreateRequestInput) (*model.VerificationRequest, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	if err := wait(ctx, s.latency.RequestMutate); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	slaDays := actor.Company.SLADays
	if slaDays < 1 {
		slaDays = model.DefaultSLADays
	}

	now := s.clock.Now()
	id := util.NewID("REQ")
	req := &model.VerificationRequest{
		ID:          id,
		CompanyID:   actor.Company.ID,
		CandidateID: input.CandidateID,
		Status:      model.RequestStatusPaymentPending,
		Fee:         model.VerificationFee,
		Payment: model.Payment{
			Amount:   model.VerificationFee,
			Currency: model.CurrencyINR,
			Status:   model.PaymentStatusNotPaid,
		},
		Check: model.VerificationCheck{
			ID:           util.NewID("check"),
			RequestID:    id,
			Type:         model.CheckTypeEducation,
			Substatus:    model.CheckNotStarted,
			EvidenceURLs: []string{},
			UpdatedAt:    now,
		},
		CreatedBy: actor.User.ID,
		CreatedAt: now,
		DueAt:     now.AddDate(0, 0, slaDays),
		Timeline: []model.TimelineEntry{
			{At: now, By: actor.User.Name, Action: "Request created"},
		},
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		logger.Error("Failed to create verification request", err, map[string]interface{}{
			"candidate_id": input.CandidateID,
			"company_id":   actor.Company.ID,
		})
		return nil, err
	}

	logger.Info("Verification request created", map[string]interface{}{
		"request_id":   req.ID,
		"candidate_id": req.CandidateID,
		"company_id":   req.CompanyID,
		"due_at":       req.DueAt,
	})
	s.publish(model.EventRequestCreated, req, "Request created")
	return req, nil
}

func (s *requestService) Update(ctx context.Context, id string, patch RequestPatch) (*model.VerificationRequest, error) {
	if err := wait(ctx, s.latency.RequestMutate); err != nil {
		return nil, err
	}

	updated, err := s.mutate(ctx, id, func(r *model.VerificationRequest) error {
		if patch.Status != nil && *patch.Status != r.Status {
			if !patch.Status.Valid() || !s.policy.CanTransition(r.Status, *patch.Status) {
				return ErrInvalidTransition
			}
			r.Status = *patch.Status
		}
		if patch.RejectionReason != nil {
			r.RejectionReason = *patch.RejectionReason
		}
		if patch.Payment != nil {
			mergePayment(&r.Payment, patch.Payment)
		}
		if patch.Check != nil {
			if err := mergeCheck(&r.Check, patch.Check); err != nil {
				return err
			}
			r.Check.UpdatedAt = s.clock.Now()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(model.EventRequestUpdated, updated, "")
	return updated, nil
}

func mergePayment(dst *model.Payment, p *PaymentPatch) {
	if p.Amount != nil {
		dst.Amount = *p.Amount
	}
	if p.Currency != nil {
		dst.Currency = *p.Currency
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	if p.TxnID != nil {
		dst.TxnID = *p.TxnID
	}
	if p.PaidAt != nil {
		paidAt := *p.PaidAt
		dst.PaidAt = &paidAt
	}
	if p.Method != nil {
		dst.Method = *p.Method
	}
}

func mergeCheck(dst *model.VerificationCheck, p *CheckPatch) error {
	if p.Substatus != nil {
		if !p.Substatus.Valid() {
			return newValidationError("substatus", "Invalid check status")
		}
		dst.Substatus = *p.Substatus
	}
	if p.RegistrarEmail != nil {
		dst.RegistrarEmail = *p.RegistrarEmail
	}
	if p.RegistrarPhone != nil {
		dst.RegistrarPhone = *p.RegistrarPhone
	}
	if p.Notes != nil {
		dst.Notes = *p.Notes
	}
	if p.EvidenceURLs != nil {
		dst.EvidenceURLs = append([]string{}, p.EvidenceURLs...)
	}
	return nil
}

func (s *requestService) SetStatus(ctx context.Context, actor *model.Session, id string, status model.RequestStatus, reason string) (*model.VerificationRequest, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	if !status.Valid() {
		return nil, newValidationError("status", "Invalid status")
	}
	reason = strings.TrimSpace(reason)
	if status == model.RequestStatusRejected && reason == "" {
		return nil, ErrRejectionReason
	}
	if err := wait(ctx, s.latency.RequestMutate); err != nil {
		return nil, err
	}

	action := fmt.Sprintf("Status changed to %s", status)
	updated, err := s.mutate(ctx, id, func(r *model.VerificationRequest) error {
		if !s.policy.CanTransition(r.Status, status) {
			return ErrInvalidTransition
		}
		r.Status = status
		if status == model.RequestStatusRejected {
			r.RejectionReason = reason
		}
		r.Timeline = append(r.Timeline, model.TimelineEntry{
			At:     s.clock.Now(),
			By:     actor.User.Name,
			Action: action,
		})
		return nil
	})
	if err != nil {
		logger.Warn("Status change refused", map[string]interface{}{
			"request_id": id,
			"status":     status,
			"error":      err.Error(),
		})
		return nil, err
	}

	logger.Info("Request status changed", map[string]interface{}{
		"request_id": id,
		"status":     status,
		"by":         actor.User.ID,
	})
	s.publish(model.EventRequestStatus, updated, action)
	return updated, nil
}

func (s *requestService) UpdatePayment(ctx context.Context, actor *model.Session, id string, update PaymentUpdate) (*model.VerificationRequest, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	if update.Status != model.PaymentStatusPaid && update.Status != model.PaymentStatusFailed {
		return nil, ErrInvalidPaymentStatus
	}
	if update.Method != "" && !update.Method.Valid() {
		return nil, newValidationError("method", "Invalid payment method")
	}
	if err := wait(ctx, s.latency.RequestMutate); err != nil {
		return nil, err
	}

	var action string
	updated, err := s.mutate(ctx, id, func(r *model.VerificationRequest) error {
		if !s.policy.CanRecordPayment(r.Status) {
			return ErrInvalidTransition
		}

		r.Payment.Status = update.Status
		if update.TxnID != "" {
			r.Payment.TxnID = update.TxnID
		}
		if update.PaidAt != nil {
			paidAt := *update.PaidAt
			r.Payment.PaidAt = &paidAt
		}
		if update.Method != "" {
			r.Payment.Method = update.Method
		}

		if update.Status == model.PaymentStatusPaid {
			r.Status = model.RequestStatusInProgress
			action = fmt.Sprintf("Payment successful - ₹%d", r.Fee)
		} else {
			action = "Payment failed"
		}
		r.Timeline = append(r.Timeline, model.TimelineEntry{
			At:     s.clock.Now(),
			By:     actor.User.Name,
			Action: action,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Payment recorded on request", map[string]interface{}{
		"request_id":     id,
		"payment_status": update.Status,
		"txn_id":         update.TxnID,
	})
	s.publish(model.EventRequestPayment, updated, action)
	return updated, nil
}

func (s *requestService) UpdateCheck(ctx context.Context, actor *model.Session, id string, patch CheckPatch) (*model.VerificationRequest, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	if err := wait(ctx, s.latency.RequestMutate); err != nil {
		return nil, err
	}

	var action string
	updated, err := s.mutate(ctx, id, func(r *model.VerificationRequest) error {
		if err := mergeCheck(&r.Check, &patch); err != nil {
			return err
		}
		now := s.clock.Now()
		r.Check.UpdatedAt = now

		action = fmt.Sprintf("Verification check updated - %s", r.Check.Substatus)
		r.Timeline = append(r.Timeline, model.TimelineEntry{
			At:     now,
			By:     actor.User.Name,
			Action: action,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(model.EventRequestCheck, updated, action)
	return updated, nil
}

func (s *requestService) mutate(ctx context.Context, id string, fn repository.MutateFunc) (*model.VerificationRequest, error) {
	updated, err := s.requestRepo.Update(ctx, id, fn)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	return updated, err
}

func (s *requestService) publish(eventType model.EventType, r *model.VerificationRequest, action string) {
	s.events.Publish(model.RequestEvent{
		Type:      eventType,
		RequestID: r.ID,
		CompanyID: r.CompanyID,
		Status:    r.Status,
		Action:    action,
		At:        s.clock.Now(),
	})
}
