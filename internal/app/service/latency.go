package service

import (
	"context"
	"time"

	"github.com/ikkim/eduverify-backend/pkg/util"
)

// Latency holds the artificial delay each operation waits before touching storage
type Latency struct {
	Login           time.Duration
	Signup          time.Duration
	CandidateList   time.Duration
	CandidateGet    time.Duration
	CandidateCreate time.Duration
	RequestList     time.Duration
	RequestGet      time.Duration
	RequestMutate   time.Duration
	Receipt         time.Duration
	Upload          time.Duration
	CompanyUpdate   time.Duration
}

func DefaultLatency() Latency {
	return Latency{
		Login:           500 * time.Millisecond,
		Signup:          500 * time.Millisecond,
		CandidateList:   300 * time.Millisecond,
		CandidateGet:    200 * time.Millisecond,
		CandidateCreate: 300 * time.Millisecond,
		RequestList:     300 * time.Millisecond,
		RequestGet:      200 * time.Millisecond,
		RequestMutate:   300 * time.Millisecond,
		Receipt:         300 * time.Millisecond,
		Upload:          time.Second,
		CompanyUpdate:   500 * time.Millisecond,
	}
}

// NoLatency disables every delay
func NoLatency() Latency {
	return Latency{}
}

func wait(ctx context.Context, d time.Duration) error {
	return util.Simulate(ctx, d)
}
