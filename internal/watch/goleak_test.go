package watch

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures Run closes the fsnotify reader goroutine.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
