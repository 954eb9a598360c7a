package extract

import (
	"context"

	"github.com/fwojciec/evidex"
	"golang.org/x/time/rate"
)

// Ensure ThrottledRecognizer implements evidex.Recognizer at compile time.
var _ evidex.Recognizer = (*ThrottledRecognizer)(nil)

// ThrottledRecognizer limits the rate of calls to an underlying Recognizer
// shared by all workers.
type ThrottledRecognizer struct {
	next    evidex.Recognizer
	limiter *rate.Limiter
}

// NewThrottledRecognizer allows perSecond calls per second with a burst of
// one. A non-positive rate disables the limit.
func NewThrottledRecognizer(next evidex.Recognizer, perSecond float64) *ThrottledRecognizer {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &ThrottledRecognizer{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Recognize waits for a token and delegates to the wrapped recognizer.
func (r *ThrottledRecognizer) Recognize(ctx context.Context, image []byte) (*evidex.Recognition, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The next token would arrive after the context deadline.
		return nil, evidex.Errorf(evidex.ETIMEOUT, "recognizer rate limit: %v", err)
	}
	return r.next.Recognize(ctx, image)
}
