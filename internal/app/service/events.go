package service

import "github.com/ikkim/eduverify-backend/internal/app/model"

// EventPublisher receives request lifecycle events for live dashboards
type EventPublisher interface {
	Publish(event model.RequestEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.RequestEvent) {}

// NopPublisher discards every event
func NopPublisher() EventPublisher {
	return nopPublisher{}
}

type multiPublisher []EventPublisher

func (m multiPublisher) Publish(event model.RequestEvent) {
	for _, p := range m {
		p.Publish(event)
	}
}

// FanOut delivers each event to every non-nil publisher in order
func FanOut(publishers ...EventPublisher) EventPublisher {
	var out multiPublisher
	for _, p := range publishers {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
