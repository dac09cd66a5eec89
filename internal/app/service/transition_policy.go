package service

import (
	"fmt"

	"github.com/ikkim/eduverify-backend/internal/app/model"
)

const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

// TransitionPolicy decides which lifecycle moves a request may make
type TransitionPolicy interface {
	CanTransition(from, to model.RequestStatus) bool
	CanRecordPayment(current model.RequestStatus) bool
	Name() string
}

type permissivePolicy struct{}

// PermissivePolicy allows any status from any status
func PermissivePolicy() TransitionPolicy {
	return permissivePolicy{}
}

func (permissivePolicy) CanTransition(_, to model.RequestStatus) bool { return to.Valid() }
func (permissivePolicy) CanRecordPayment(model.RequestStatus) bool    { return true }
func (permissivePolicy) Name() string                                 { return PolicyPermissive }

type strictPolicy struct {
	allowed map[model.RequestStatus][]model.RequestStatus
}

// StrictPolicy only follows the forward lifecycle; VERIFIED and REJECTED are terminal
func StrictPolicy() TransitionPolicy {
	return strictPolicy{allowed: map[model.RequestStatus][]model.RequestStatus{
		model.RequestStatusDraft:          {model.RequestStatusPaymentPending},
		model.RequestStatusPaymentPending: {model.RequestStatusPaymentSuccess, model.RequestStatusInProgress},
		model.RequestStatusPaymentSuccess: {model.RequestStatusInProgress},
		model.RequestStatusInProgress:     {model.RequestStatusVerified, model.RequestStatusRejected},
	}}
}

func (p strictPolicy) CanTransition(from, to model.RequestStatus) bool {
	for _, next := range p.allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (strictPolicy) CanRecordPayment(current model.RequestStatus) bool {
	return current == model.RequestStatusPaymentPending
}

func (strictPolicy) Name() string { return PolicyStrict }

// PolicyByName maps REQUEST_TRANSITION_POLICY to a policy
func PolicyByName(name string) (TransitionPolicy, error) {
	switch name {
	case "", PolicyPermissive:
		return PermissivePolicy(), nil
	case PolicyStrict:
		return StrictPolicy(), nil
	}
	return nil, fmt.Errorf("unknown transition policy %q", name)
}
