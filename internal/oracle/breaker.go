package oracle

import (
	"context"
	"log/slog"
	"time"

	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/sony/gobreaker"
)

// WithBreaker wraps an Oracle with a circuit breaker so that repeated
// failures (timeouts, network errors) trip the breaker and subsequent
// calls fail fast instead of each paying the oracle's own per-call
// timeout — an enrichment of the "oracle call carries a caller-supplied
// timeout" rule, not a replacement for it: the wrapped oracle's own
// context deadline still applies whenever the breaker is closed.
func WithBreaker(inner Oracle, logger *slog.Logger) Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	cb := gobreaker.NewCircuitBreaker[*Recommendation](gobreaker.Settings{
		Name:        "oracle",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("oracle circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &breakerOracle{inner: inner, cb: cb, logger: logger}
}

type breakerOracle struct {
	inner  Oracle
	cb     *gobreaker.CircuitBreaker[*Recommendation]
	logger *slog.Logger
}

func (b *breakerOracle) Reason(ctx context.Context, err *model.DetectedError, meta map[string]model.FeatureMetadata, ruleAttempt *model.FixStrategy) (*Recommendation, error) {
	rec, cbErr := b.cb.Execute(func() (*Recommendation, error) {
		return b.inner.Reason(ctx, err, meta, ruleAttempt)
	})
	if cbErr != nil {
		return nil, cbErr
	}
	return rec, nil
}
