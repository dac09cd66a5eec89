package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/internal/storage"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.RequestEvent
}

func (p *recordingPublisher) Publish(event model.RequestEvent) {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
}

func (p *recordingPublisher) Types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	store         storage.Store
	companyRepo   repository.CompanyRepository
	candidateRepo repository.CandidateRepository
	requestRepo   repository.RequestRepository
	sessionRepo   repository.SessionRepository
	clock         *fixedClock
	events        *recordingPublisher
	requests      RequestService
	candidates    CandidateService
}

func setupServiceTest(t *testing.T, policy TransitionPolicy) *testEnv {
	t.Helper()

	store := storage.NewMemoryStore()
	env := &testEnv{
		store:         store,
		companyRepo:   repository.NewCompanyRepository(store),
		candidateRepo: repository.NewCandidateRepository(store),
		requestRepo:   repository.NewRequestRepository(store),
		sessionRepo:   repository.NewSessionRepository(store),
		clock:         newFixedClock(),
		events:        &recordingPublisher{},
	}
	env.requests = NewRequestService(env.requestRepo, env.candidateRepo, policy, env.events, env.clock, NoLatency())
	env.candidates = NewCandidateService(env.candidateRepo, NoLatency())
	return env
}

func employerSession() *model.Session {
	company := DemoCompany()
	return &model.Session{
		User: model.User{
			ID:        "user-1",
			CompanyID: company.ID,
			Name:      "Demo Employer",
			Email:     "employer@demo",
			Role:      model.RoleEmployer,
		},
		Company: company,
	}
}

func verifierSession() *model.Session {
	s := employerSession()
	s.User = model.User{ID: "user-2", CompanyID: s.Company.ID, Name: "Demo Verifier", Email: "verifier@demo", Role: model.RoleVerifier}
	return s
}

func janeDoeInput() CandidateInput {
	year := 2020
	return CandidateInput{
		FullName:       "Jane Doe",
		Mobile:         "+91 98765 43210",
		Email:          "jane@example.com",
		DegreeName:     "B.Tech Computer Science",
		UniversityName: "IIT Bombay",
		GraduationYear: &year,
	}
}

func (env *testEnv) createRequest(t *testing.T, actor *model.Session) *model.VerificationRequest {
	t.Helper()
	ctx := context.Background()

	candidate, err := env.candidates.Create(ctx, janeDoeInput())
	require.NoError(t, err)

	req, err := env.requests.Create(ctx, actor, CreateRequestInput{CandidateID: candidate.ID})
	require.NoError(t, err)
	return req
}
