package sync

import (
	"context"
	"time"

	"github.com/0xPolygon/cdk-l2node/config/types"
	"github.com/0xPolygon/cdk-l2node/log"
)

// RetryHandler decides what to do after a failed attempt: wait for
// RetryAfterErrorPeriod, or give up once MaxRetryAttemptsAfterError is
// reached. A negative maximum means retrying forever.
type RetryHandler struct {
	RetryAfterErrorPeriod      time.Duration
	MaxRetryAttemptsAfterError int
}

// RetryConfig is the configurable form of RetryHandler.
type RetryConfig struct {
	RetryAfterErrorPeriod      types.Duration `mapstructure:"RetryAfterErrorPeriod"`
	MaxRetryAttemptsAfterError int            `mapstructure:"MaxRetryAttemptsAfterError"`
}

func NewRetryHandler(cfg RetryConfig) *RetryHandler {
	return &RetryHandler{
		RetryAfterErrorPeriod:      cfg.RetryAfterErrorPeriod.Duration,
		MaxRetryAttemptsAfterError: cfg.MaxRetryAttemptsAfterError,
	}
}

// Handle waits before the next attempt. It returns false if ctx is done
// meanwhile, and exits the process if the attempts are exhausted.
func (h *RetryHandler) Handle(ctx context.Context, funcName string, attempts int) bool {
	if h.MaxRetryAttemptsAfterError > -1 && attempts >= h.MaxRetryAttemptsAfterError {
		log.Fatalf(
			"%s failed too many times (%d)",
			funcName, h.MaxRetryAttemptsAfterError,
		)
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(h.RetryAfterErrorPeriod):
		return true
	}
}
