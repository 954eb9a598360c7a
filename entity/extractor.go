// Package entity turns recognizer output into validated entity mentions.
package entity

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/evidex"
)

// Ensure Extractor implements evidex.EntityExtractor at compile time.
var _ evidex.EntityExtractor = (*Extractor)(nil)

// Extractor implements evidex.EntityExtractor. It trusts the recognizer
// for labels only: every returned mention is checked against the text it
// claims to come from.
type Extractor struct {
	recognizer evidex.EntityRecognizer
}

// NewExtractor creates a new Extractor.
func NewExtractor(recognizer evidex.EntityRecognizer) *Extractor {
	return &Extractor{recognizer: recognizer}
}

// ExtractEntities returns the valid mentions in text ordered by offset.
// Mentions with unknown types, out of range or misaligned offsets, or
// surface text that differs from text at the offsets are dropped.
func (e *Extractor) ExtractEntities(ctx context.Context, text string) ([]evidex.RawMention, error) {
	mentions := []evidex.RawMention{}
	if strings.TrimSpace(text) == "" {
		return mentions, nil
	}

	raw, err := e.recognizer.Infer(ctx, text)
	if err != nil {
		return nil, modelError(ctx, err)
	}

	type span struct {
		typ        evidex.EntityType
		start, end int
	}
	seen := make(map[span]bool, len(raw))

	for _, m := range raw {
		if !validType(m.Type) || !validSpan(text, m.StartOffset, m.EndOffset) {
			continue
		}
		surface := text[m.StartOffset:m.EndOffset]
		if m.SurfaceText != "" && m.SurfaceText != surface {
			continue
		}
		if evidex.NormalizeEntityText(m.Type, surface) == "" {
			continue
		}
		key := span{m.Type, m.StartOffset, m.EndOffset}
		if seen[key] {
			continue
		}
		seen[key] = true
		m.SurfaceText = surface
		mentions = append(mentions, m)
	}

	slices.SortFunc(mentions, func(a, b evidex.RawMention) int {
		return cmp.Or(
			cmp.Compare(a.StartOffset, b.StartOffset),
			cmp.Compare(a.EndOffset, b.EndOffset),
			cmp.Compare(a.Type, b.Type),
		)
	})
	return mentions, nil
}

func validType(t evidex.EntityType) bool {
	return slices.Contains(evidex.EntityTypes, t)
}

// validSpan reports whether [start, end) is a non-empty range of text on
// UTF-8 rune boundaries.
func validSpan(text string, start, end int) bool {
	if start < 0 || end > len(text) || start >= end {
		return false
	}
	if !utf8.RuneStart(text[start]) {
		return false
	}
	return end == len(text) || utf8.RuneStart(text[end])
}

// modelError maps a recognizer failure to EMODEL, keeping deadlines and
// cancellation distinguishable.
func modelError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return evidex.Errorf(evidex.ETIMEOUT, "entity recognition: deadline exceeded")
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var e *evidex.Error
	if errors.As(err, &e) {
		if e.Code == evidex.EMODEL {
			return err
		}
		return evidex.Errorf(evidex.EMODEL, "entity recognition: %s", e.Message)
	}
	return evidex.Errorf(evidex.EMODEL, "entity recognition: %v", err)
}
