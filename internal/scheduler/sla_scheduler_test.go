package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	"github.com/ikkim/eduverify-backend/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDashboard struct {
	mu      sync.Mutex
	overdue []model.VerificationRequest
	err     error
}

func (d *stubDashboard) Stats(context.Context, service.RequestFilter) (*service.DashboardStats, error) {
	return &service.DashboardStats{}, nil
}

func (d *stubDashboard) Overdue(context.Context) ([]model.VerificationRequest, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.overdue, d.err
}

func (d *stubDashboard) set(requests ...model.VerificationRequest) {
	d.mu.Lock()
	d.overdue = requests
	d.mu.Unlock()
}

type capturePublisher struct {
	mu     sync.Mutex
	events []model.RequestEvent
}

func (p *capturePublisher) Publish(event model.RequestEvent) {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func overdueRequest(id string, dueAt time.Time) model.VerificationRequest {
	return model.VerificationRequest{
		ID:        id,
		CompanyID: "company-1",
		Status:    model.RequestStatusInProgress,
		DueAt:     dueAt,
	}
}

func TestSLAScheduler_Check(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	dashboard := &stubDashboard{}
	events := &capturePublisher{}
	m := metrics.New(prometheus.NewRegistry())
	s := NewSLAScheduler("@every 1h", dashboard, events, m, fixedClock(now))
	ctx := context.Background()

	dashboard.set(overdueRequest("REQ-1", now.Add(-48*time.Hour)))
	fresh, err := s.Check(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	require.Len(t, events.events, 1)
	assert.Equal(t, model.EventRequestSLABreached, events.events[0].Type)
	assert.Equal(t, "REQ-1", events.events[0].RequestID)
	assert.Equal(t, now, events.events[0].At)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SLABreaches))

	// same breach is announced once
	dashboard.set(overdueRequest("REQ-1", now.Add(-48*time.Hour)), overdueRequest("REQ-2", now.Add(-time.Hour)))
	fresh, err = s.Check(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "REQ-2", fresh[0].ID)
	assert.Equal(t, 2, events.count())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SLABreaches))

	// resolved requests are forgotten, so a later breach is announced again
	dashboard.set()
	_, err = s.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SLABreaches))

	dashboard.set(overdueRequest("REQ-1", now.Add(-48*time.Hour)))
	fresh, err = s.Check(ctx)
	require.NoError(t, err)
	assert.Len(t, fresh, 1)
	assert.Equal(t, 3, events.count())
}

func TestSLAScheduler_CheckError(t *testing.T) {
	dashboard := &stubDashboard{err: errors.New("storage down")}
	s := NewSLAScheduler("@every 1h", dashboard, nil, nil, nil)

	_, err := s.Check(context.Background())
	assert.EqualError(t, err, "storage down")
}

func TestSLAScheduler_Start(t *testing.T) {
	now := time.Now()
	dashboard := &stubDashboard{}
	dashboard.set(overdueRequest("REQ-1", now.Add(-time.Hour)))
	events := &capturePublisher{}

	s := NewSLAScheduler("@every 1s", dashboard, events, nil, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return events.count() == 1 }, 3*time.Second, 20*time.Millisecond)
}

func TestSLAScheduler_InvalidSchedule(t *testing.T) {
	s := NewSLAScheduler("not a schedule", &stubDashboard{}, nil, nil, nil)
	assert.Error(t, s.Start())
}
