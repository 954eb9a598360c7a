package exec

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/evidex"
)

// Ensure EntityRecognizer implements evidex.EntityRecognizer at compile time.
var _ evidex.EntityRecognizer = (*EntityRecognizer)(nil)

// Labels maps model labels to entity types. Labels not listed are ignored.
var Labels = map[string]evidex.EntityType{
	"PERSON": evidex.EntityPerson,
	"PER":    evidex.EntityPerson,
	"ORG":    evidex.EntityOrg,
	"GPE":    evidex.EntityPlace,
	"LOC":    evidex.EntityPlace,
	"FAC":    evidex.EntityPlace,
	"PLACE":  evidex.EntityPlace,
	"DATE":   evidex.EntityDate,
}

// OffsetUnit says how a model counts offsets.
type OffsetUnit string

// OffsetUnit values.
const (
	OffsetRunes OffsetUnit = "runes"
	OffsetBytes OffsetUnit = "bytes"
)

// EntityRecognizer pipes text to a local model command on stdin and reads
// a JSON array of {"type", "text", "start", "end"} objects from stdout.
type EntityRecognizer struct {
	Runner  Runner
	Command string
	Args    []string

	// Offsets is the unit of start and end in the model output.
	// Defaults to OffsetRunes.
	Offsets OffsetUnit
}

// NewEntityRecognizer creates a recognizer running command with args.
func NewEntityRecognizer(runner Runner, command string, args ...string) *EntityRecognizer {
	return &EntityRecognizer{Runner: runner, Command: command, Args: args, Offsets: OffsetRunes}
}

type modelMention struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Infer runs the model over text. Offsets are converted to byte offsets.
func (r *EntityRecognizer) Infer(ctx context.Context, text string) ([]evidex.RawMention, error) {
	out, stderr, err := r.Runner.Run(ctx, []byte(text), r.Command, r.Args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if IsNotFound(err) {
			return nil, evidex.Errorf(evidex.EMODEL, "entity model command %q not found", r.Command)
		}
		return nil, evidex.Errorf(evidex.EMODEL, "entity model failed: %v: %s", err, StderrMessage(stderr))
	}

	var raw []modelMention
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, evidex.Errorf(evidex.EMODEL, "entity model returned invalid JSON: %v", err)
	}

	toByte := func(i int) int { return i }
	if r.Offsets != OffsetBytes {
		toByte = runeToByte(text)
	}

	mentions := make([]evidex.RawMention, 0, len(raw))
	for _, m := range raw {
		typ, ok := Labels[strings.ToUpper(m.Type)]
		if !ok {
			continue
		}
		mentions = append(mentions, evidex.RawMention{
			Type:        typ,
			SurfaceText: m.Text,
			StartOffset: toByte(m.Start),
			EndOffset:   toByte(m.End),
		})
	}
	return mentions, nil
}

// runeToByte returns a function mapping rune indexes of text to byte
// offsets. Indexes out of range map to -1.
func runeToByte(text string) func(int) int {
	offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	return func(i int) int {
		if i < 0 || i >= len(offsets) {
			return -1
		}
		return offsets[i]
	}
}
