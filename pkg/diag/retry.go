package diag

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

// ExchangeWithRetry wraps Exchange with the caller-side policy the NRC
// classification suggests: a "busy, repeat request" rejection is resent
// after a short delay, everything else fails immediately. The server never
// applies this policy on its own.
func ExchangeWithRetry(ctx context.Context, s *Server, payload Payload, attempts uint) ([]byte, error) {
	var out []byte
	err := retry.Do(func() error {
		var err error
		out, err = s.Exchange(ctx, payload)
		if err == nil {
			return nil
		}
		var nre *NegativeResponseError
		if errors.As(err, &nre) && nre.Code.IsRepeatRequest() {
			return err
		}
		return retry.Unrecoverable(err)
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(250*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}
