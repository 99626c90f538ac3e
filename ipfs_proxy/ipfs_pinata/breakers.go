package ipfs_pinata

import (
	"net/http"

	"github.com/explormate/explormate-chain/common/rcontext"
	"github.com/pkg/errors"
	"github.com/rubyist/circuitbreaker"
)

// newBreaker returns nil when backoffAt is not positive: calls then go straight
// through. The breaker only fast-fails, it never retries.
func newBreaker(backoffAt int) *circuit.Breaker {
	if backoffAt <= 0 {
		return nil
	}
	return circuit.NewConsecutiveBreaker(int64(backoffAt))
}

// The API and the gateway are separate hosts and trip independently.
func (c *Client) breakerFor(r request) *circuit.Breaker {
	if r.authenticated {
		return c.apiBreaker
	}
	return c.gatewayBreaker
}

func callBreaker(ctx rcontext.RequestContext, cb *circuit.Breaker, fn func() error) error {
	if cb == nil {
		return fn()
	}
	return cb.CallContext(ctx, fn, 0)
}

// filterError splits err into the part the breaker should count and the part
// that is only returned to the caller. Unknown content ids and rejected
// credentials say nothing about the health of the host.
func filterError(err error) (breakerErr error, replyErr error) {
	if err == nil {
		return nil, nil
	}
	var te *TransportError
	if errors.As(err, &te) && te.StatusCode != 0 && te.StatusCode < http.StatusInternalServerError {
		return nil, err
	}
	return err, err
}
