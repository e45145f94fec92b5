package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy is a bounded retry with a fixed pause between attempts.
type Policy struct {
	MaxAttempts int           `yaml:"attempts"`
	Delay       time.Duration `yaml:"delay"`
}

func Default() Policy {
	return Policy{MaxAttempts: 3, Delay: 3 * time.Second}
}

// Do runs op until it succeeds, the attempts are spent, or ctx is done.
// notify, when non-nil, is called after each failed attempt that will be
// retried. The last error is returned.
func (p Policy) Do(ctx context.Context, op func(attempt int) error, notify func(attempt int, err error)) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)),
		ctx,
	)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return op(attempt)
	}, b, func(err error, _ time.Duration) {
		if notify != nil {
			notify(attempt, err)
		}
	})
}
