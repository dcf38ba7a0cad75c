package log

import (
	"sync"

	"go.uber.org/zap"
)

// Reporter is the fire-and-forget error sink used by caches and handlers.
// It logs through zap and remembers the most recent error for the UI.
type Reporter struct {
	logger *zap.Logger

	mu    sync.Mutex
	last  error
	count int
}

// NewReporter wraps logger; a nil logger is replaced with a no-op one.
func NewReporter(logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{logger: logger}
}

// Report records err. Nil errors are ignored.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	r.last = err
	r.count++
	r.mu.Unlock()
	r.logger.Error("request failed", zap.Error(err))
}

// Last returns the most recent reported error, or nil.
func (r *Reporter) Last() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Count returns how many errors were reported.
func (r *Reporter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Clear forgets the last error.
func (r *Reporter) Clear() {
	r.mu.Lock()
	r.last = nil
	r.mu.Unlock()
}
