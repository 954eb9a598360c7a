package gazetteer

import (
	"context"
	"regexp"

	"github.com/fwojciec/evidex"
)

// Ensure DateRecognizer implements evidex.EntityRecognizer at compile time.
var _ evidex.EntityRecognizer = DateRecognizer{}

const month = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`

// datePattern lists the accepted date forms, most specific first.
var datePattern = regexp.MustCompile(`(?i)\b(?:` +
	`\d{4}-\d{2}-\d{2}` + // 2021-03-04
	`|\d{1,2}/\d{1,2}/\d{4}` + // 03/04/2021
	`|` + month + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}` + // March 4, 2021
	`|\d{1,2}(?:st|nd|rd|th)?\s+` + month + `,?\s+\d{4}` + // 4 March 2021
	`|` + month + `,?\s+\d{4}` + // March 2021
	`)\b`)

// DateRecognizer finds calendar dates written in common English forms.
type DateRecognizer struct{}

// Infer returns every date expression in text.
func (DateRecognizer) Infer(ctx context.Context, text string) ([]evidex.RawMention, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return appendMatches(nil, datePattern, evidex.EntityDate, text), nil
}
