package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	"github.com/ikkim/eduverify-backend/internal/metrics"
	"github.com/ikkim/eduverify-backend/pkg/logger"
	"github.com/ikkim/eduverify-backend/pkg/util"
	"github.com/robfig/cron/v3"
)

const checkTimeout = 30 * time.Second

// SLAScheduler SLA 초과 요청 감시 스케줄러
type SLAScheduler struct {
	cron      *cron.Cron
	schedule  string
	dashboard service.DashboardService
	events    service.EventPublisher
	metrics   *metrics.Metrics
	clock     util.Clock

	mu       sync.Mutex
	notified map[string]bool // 이미 알린 요청 ID
}

// NewSLAScheduler SLA 스케줄러 생성
func NewSLAScheduler(schedule string, dashboard service.DashboardService, events service.EventPublisher, m *metrics.Metrics, clock util.Clock) *SLAScheduler {
	if events == nil {
		events = service.NopPublisher()
	}
	if clock == nil {
		clock = util.SystemClock{}
	}
	return &SLAScheduler{
		cron:      cron.New(),
		schedule:  schedule,
		dashboard: dashboard,
		events:    events,
		metrics:   m,
		clock:     clock,
		notified:  make(map[string]bool),
	}
}

// Start 스케줄러 시작
func (s *SLAScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()

		if _, err := s.Check(ctx); err != nil {
			logger.Error("Scheduled SLA check failed", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for SLA check", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("SLA scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// Stop 스케줄러 중지. 실행 중인 점검이 끝날 때까지 대기
func (s *SLAScheduler) Stop() {
	logger.Info("Stopping SLA scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("SLA scheduler stopped", nil)
}

// Check 기한이 지난 진행 중 요청을 찾아 기록하고, 처음 초과된 요청만 이벤트로 알림
func (s *SLAScheduler) Check(ctx context.Context) ([]model.VerificationRequest, error) {
	overdue, err := s.dashboard.Overdue(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.SetSLABreaches(len(overdue))

	now := s.clock.Now()
	current := make(map[string]bool, len(overdue))
	var fresh []model.VerificationRequest

	s.mu.Lock()
	for _, r := range overdue {
		current[r.ID] = true
		if !s.notified[r.ID] {
			s.notified[r.ID] = true
			fresh = append(fresh, r)
		}
	}
	// 더 이상 초과 상태가 아닌 요청은 잊음
	for id := range s.notified {
		if !current[id] {
			delete(s.notified, id)
		}
	}
	s.mu.Unlock()

	for _, r := range fresh {
		logger.Warn("Verification request breached SLA", map[string]interface{}{
			"request_id": r.ID,
			"company_id": r.CompanyID,
			"due_at":     r.DueAt,
			"overdue_by": now.Sub(r.DueAt).Round(time.Minute).String(),
		})
		s.events.Publish(model.RequestEvent{
			Type:      model.EventRequestSLABreached,
			RequestID: r.ID,
			CompanyID: r.CompanyID,
			Status:    r.Status,
			Action:    "SLA breached",
			At:        now,
		})
	}

	if len(overdue) > 0 {
		logger.Info("SLA check completed", map[string]interface{}{
			"overdue": len(overdue),
			"new":     len(fresh),
		})
	}
	return fresh, nil
}
