package evidex

import (
	"context"
	"strings"
)

// EntityType is the kind of a named entity.
type EntityType string

// EntityType values.
const (
	EntityPerson EntityType = "PERSON"
	EntityOrg    EntityType = "ORG"
	EntityPlace  EntityType = "PLACE"
	EntityDate   EntityType = "DATE"
)

// EntityTypes lists every supported entity type.
var EntityTypes = []EntityType{EntityPerson, EntityOrg, EntityPlace, EntityDate}

// ParseEntityType parses a case-insensitive entity type name.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range EntityTypes {
		if t == known {
			return t, nil
		}
	}
	return "", Errorf(EINVALID, "unknown entity type %q", s)
}

// Entity is the canonical record shared by all mentions with identical
// normalized text and type.
type Entity struct {
	ID            string     `json:"id"`
	Type          EntityType `json:"type"`
	CanonicalText string     `json:"canonicalText"`
}

// EntityMention is one occurrence of an entity in a stored page.
// Offsets are byte offsets into the page text.
type EntityMention struct {
	EntityID    string `json:"entityId"`
	DocumentID  string `json:"documentId"`
	PageNumber  int    `json:"pageNumber"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	SurfaceText string `json:"surfaceText"`
}

// RawMention is a model-reported mention before canonicalization.
// Offsets are byte offsets into the text passed to the recognizer.
type RawMention struct {
	Type        EntityType `json:"type"`
	SurfaceText string     `json:"surfaceText"`
	StartOffset int        `json:"startOffset"`
	EndOffset   int        `json:"endOffset"`
}

// PageMention binds a RawMention to the page it was found on.
type PageMention struct {
	PageNumber int `json:"pageNumber"`
	RawMention
}

// EntityRecognizer is the external entity-recognition capability.
type EntityRecognizer interface {
	// Infer returns the typed mentions the model finds in text.
	// Returns EMODEL if the model cannot be reached.
	Infer(ctx context.Context, text string) ([]RawMention, error)
}

// EntityExtractor converts page text into validated entity mentions.
type EntityExtractor interface {
	// ExtractEntities returns mentions ordered by start offset. It never
	// returns a mention that does not match text at its offsets.
	ExtractEntities(ctx context.Context, text string) ([]RawMention, error)
}
