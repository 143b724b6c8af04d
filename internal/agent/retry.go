package agent

import (
	"math"
	"time"

	"taxitalk/internal/llm"
)

const (
	backoffBase = 1 * time.Second
	backoffCap  = 8 * time.Second
)

type action int

const (
	actionRetry action = iota
	actionGiveUp
)

type decision struct {
	Action  action
	Delay   time.Duration
	Message string
}

// decide maps a failed attempt to what happens next. Rate-limit errors are
// retried with exponential backoff until the attempt budget is spent; every
// other error is terminal on the first occurrence.
func decide(attempt, maxAttempts int, err error) decision {
	if llm.IsRateLimit(err) {
		if attempt+1 < maxAttempts {
			return decision{Action: actionRetry, Delay: backoff(attempt)}
		}
		return decision{Action: actionGiveUp, Message: msgBusy}
	}
	return decision{Action: actionGiveUp, Message: msgError(err)}
}

func backoff(attempt int) time.Duration {
	d := time.Duration(float64(backoffBase) * math.Pow(2, float64(attempt)))
	if d > backoffCap {
		return backoffCap
	}
	return d
}
