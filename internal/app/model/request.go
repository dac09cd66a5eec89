package model

import (
	"time"
)

type RequestStatus string  // 검증 요청 상태
type PaymentStatus string  // 결제 상태
type PaymentMethod string  // 결제 수단
type CheckSubstatus string // 검증 세부 상태

const (
	RequestStatusDraft          RequestStatus = "DRAFT"
	RequestStatusPaymentPending RequestStatus = "PAYMENT_PENDING"
	RequestStatusPaymentSuccess RequestStatus = "PAYMENT_SUCCESS"
	RequestStatusInProgress     RequestStatus = "IN_PROGRESS"
	RequestStatusVerified       RequestStatus = "VERIFIED"
	RequestStatusRejected       RequestStatus = "REJECTED"

	PaymentStatusNotPaid PaymentStatus = "NOT_PAID"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"

	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodCard       PaymentMethod = "Card"
	PaymentMethodNetBanking PaymentMethod = "NetBanking"

	CheckNotStarted CheckSubstatus = "NOT_STARTED"
	CheckInProgress CheckSubstatus = "IN_PROGRESS"
	CheckVerified   CheckSubstatus = "VERIFIED"
	CheckIssue      CheckSubstatus = "ISSUE"
)

const (
	VerificationFee    = 500
	CurrencyINR        = "INR"
	CheckTypeEducation = "EDUCATION"
)

var AllRequestStatuses = []RequestStatus{
	RequestStatusDraft,
	RequestStatusPaymentPending,
	RequestStatusPaymentSuccess,
	RequestStatusInProgress,
	RequestStatusVerified,
	RequestStatusRejected,
}

func (s RequestStatus) Valid() bool {
	for _, status := range AllRequestStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodUPI, PaymentMethodCard, PaymentMethodNetBanking:
		return true
	}
	return false
}

func (s CheckSubstatus) Valid() bool {
	switch s {
	case CheckNotStarted, CheckInProgress, CheckVerified, CheckIssue:
		return true
	}
	return false
}

type Payment struct {
	Amount   int           `json:"amount"`
	Currency string        `json:"currency"`
	Status   PaymentStatus `json:"status"`
	TxnID    string        `json:"txnId,omitempty"`
	PaidAt   *time.Time    `json:"paidAt,omitempty"`
	Method   PaymentMethod `json:"method,omitempty"`
}

type VerificationCheck struct {
	ID             string         `json:"id"`
	RequestID      string         `json:"requestId"`
	Type           string         `json:"type"`
	Substatus      CheckSubstatus `json:"substatus"`
	RegistrarEmail string         `json:"registrarEmail,omitempty"`
	RegistrarPhone string         `json:"registrarPhone,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	EvidenceURLs   []string       `json:"evidenceUrls"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// TimelineEntry is one line of a request's append-only audit log
type TimelineEntry struct {
	At     time.Time `json:"at"`
	By     string    `json:"by"`
	Action string    `json:"action"`
}

type VerificationRequest struct {
	ID              string            `json:"id"`
	CompanyID       string            `json:"companyId"`
	CandidateID     string            `json:"candidateId"`
	Status          RequestStatus     `json:"status"`
	Fee             int               `json:"fee"`
	Payment         Payment           `json:"payment"`
	Check           VerificationCheck `json:"check"`
	CreatedBy       string            `json:"createdBy"`
	CreatedAt       time.Time         `json:"createdAt"`
	DueAt           time.Time         `json:"dueAt"`
	Timeline        []TimelineEntry   `json:"timeline"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
}

// IsOverdue reports whether an in-progress request has passed its SLA due date
func (r *VerificationRequest) IsOverdue(now time.Time) bool {
	return r.Status == RequestStatusInProgress && r.DueAt.Before(now)
}

// Receipt is the payment confirmation derived from a paid request
type Receipt struct {
	RequestID   string        `json:"requestId"`
	CompanyName string        `json:"companyName"`
	Amount      int           `json:"amount"`
	Currency    string        `json:"currency"`
	Method      PaymentMethod `json:"method,omitempty"`
	TxnID       string        `json:"txnId"`
	PaidAt      time.Time     `json:"paidAt"`
}
