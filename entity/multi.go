package entity

import (
	"context"

	"github.com/fwojciec/evidex"
)

// Ensure Multi implements evidex.EntityRecognizer at compile time.
var _ evidex.EntityRecognizer = Multi(nil)

// Multi runs several recognizers over the same text and concatenates
// their mentions. Any recognizer failing fails the whole call.
type Multi []evidex.EntityRecognizer

// Infer returns the mentions of every recognizer in order.
func (m Multi) Infer(ctx context.Context, text string) ([]evidex.RawMention, error) {
	var all []evidex.RawMention
	for _, r := range m {
		mentions, err := r.Infer(ctx, text)
		if err != nil {
			return nil, err
		}
		all = append(all, mentions...)
	}
	return all, nil
}
