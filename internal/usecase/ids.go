package usecase

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// newInvocationID returns a ULID identifying one user action.
func newInvocationID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
