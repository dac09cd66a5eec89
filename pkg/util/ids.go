package util

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns "<prefix>-<uuid>"
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Clock abstracts the wall clock so lifecycle timestamps can be pinned in tests
type Clock interface {
	Now() time.Time
}

// SystemClock reports the current UTC time
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
