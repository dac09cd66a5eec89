package model

import "time"

type EventType string

const (
	EventRequestCreated     EventType = "request.created"
	EventRequestPayment     EventType = "request.payment"
	EventRequestStatus      EventType = "request.status"
	EventRequestCheck       EventType = "request.check"
	EventRequestUpdated     EventType = "request.updated"
	EventRequestSLABreached EventType = "request.sla_breached"
)

// RequestEvent is pushed to live dashboards whenever a request changes
type RequestEvent struct {
	Type      EventType     `json:"type"`
	RequestID string        `json:"requestId"`
	CompanyID string        `json:"companyId"`
	Status    RequestStatus `json:"status"`
	Action    string        `json:"action,omitempty"`
	At        time.Time     `json:"at"`
}
