package graph

import (
	"errors"
	"time"
)

// Subjects used on the NATS side of the knowledge graph.
const (
	// IngestSubject receives entity payloads for graph ingestion.
	IngestSubject = "graph.ingest.entity"
	// LookupSubject answers entity lookups over request/reply.
	LookupSubject = "graph.query.entity"
	// DescribeSubject answers concept lookups over request/reply.
	DescribeSubject = "graph.query.concept"
)

// Predicates used for page entities. Three-level dotted notation keeps
// them queryable with NATS wildcards (e.g. "vellum.page.*").
const (
	PredicateTitle     = "vellum.page.title"
	PredicateSlug      = "vellum.page.slug"
	PredicateSummary   = "vellum.page.summary"
	PredicateAuthor    = "vellum.page.author"
	PredicateTag       = "vellum.page.tag"
	PredicateUpdatedAt = "vellum.page.updated_at"

	PredicateConceptName   = "vellum.concept.name"
	PredicateConceptLabel  = "vellum.concept.label"
	PredicateConceptParent = "vellum.concept.parent"
)

// Triple represents a semantic statement about an entity following the
// Subject-Predicate-Object pattern, with provenance metadata.
type Triple struct {
	// Subject identifies the entity this triple describes.
	Subject string `json:"subject"`

	// Predicate identifies the semantic property using three-level dotted notation.
	Predicate string `json:"predicate"`

	// Object contains the property value or entity reference.
	// For literals: primitive types (float64, bool, string, int).
	// For entity references: entity ID strings.
	Object any `json:"object"`

	// Source identifies where this assertion came from.
	Source string `json:"source"`

	// Timestamp indicates when this assertion was made.
	Timestamp time.Time `json:"timestamp"`

	// Confidence indicates the reliability of this assertion (0.0 to 1.0).
	Confidence float64 `json:"confidence"`
}

// EntityPayload is the wire format for graph ingestion and query replies.
type EntityPayload struct {
	ID        string    `json:"id"`
	Triples   []Triple  `json:"triples"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the payload for the fields the graph side requires.
func (e *EntityPayload) Validate() error {
	if e.ID == "" {
		return errors.New("entity ID is required")
	}
	return nil
}
