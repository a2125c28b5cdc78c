package dispatcher

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrStatusNotReady means the status is not durably committed yet. The
	// whole dispatch should be retried later.
	ErrStatusNotReady = errors.New("status not ready for distribution")

	// ErrInvalidStatus means the status carries data dispatch cannot act on.
	// Retrying will not help.
	ErrInvalidStatus = errors.New("invalid status")
)

// IsRetryable reports whether rerunning the whole dispatch may succeed. Feed
// insertion is idempotent, so a rerun after partial progress is safe.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidStatus) || errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
