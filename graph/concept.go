package graph

import "strings"

// Concept is a passive wrapper around a concept reply from the graph.
// A concept describes a class of entities: its name, a human-readable
// label, the concepts it specializes, and the predicates its instances
// carry. Like Thing, it never talks to the graph itself.
type Concept struct {
	payload *EntityPayload
}

// NewConcept wraps a concept payload.
func NewConcept(payload *EntityPayload) *Concept {
	return &Concept{payload: payload}
}

// ID returns the concept's entity ID.
func (c *Concept) ID() string {
	return c.payload.ID
}

// Name returns the concept's name. When the payload carries no name
// triple, the last segment of the entity ID is used.
func (c *Concept) Name() string {
	for _, triple := range c.payload.Triples {
		if triple.Predicate == PredicateConceptName {
			if name, ok := triple.Object.(string); ok {
				return name
			}
		}
	}

	segments := strings.Split(c.payload.ID, ".")
	return segments[len(segments)-1]
}

// Label returns the concept's display label, falling back to Name when
// no label triple is present.
func (c *Concept) Label() string {
	for _, triple := range c.payload.Triples {
		if triple.Predicate == PredicateConceptLabel {
			if label, ok := triple.Object.(string); ok {
				return label
			}
		}
	}
	return c.Name()
}

// Parents returns the IDs of the concepts this concept specializes,
// in triple order.
func (c *Concept) Parents() []string {
	var parents []string
	for _, triple := range c.payload.Triples {
		if triple.Predicate != PredicateConceptParent {
			continue
		}
		if id, ok := triple.Object.(string); ok {
			parents = append(parents, id)
		}
	}
	return parents
}

// Properties returns the distinct predicates declared for instances of
// this concept, excluding the concept's own metadata predicates.
func (c *Concept) Properties() []string {
	seen := make(map[string]bool)
	var properties []string

	for _, triple := range c.payload.Triples {
		switch triple.Predicate {
		case PredicateConceptName, PredicateConceptLabel, PredicateConceptParent:
			continue
		}
		if seen[triple.Predicate] {
			continue
		}
		seen[triple.Predicate] = true
		properties = append(properties, triple.Predicate)
	}

	return properties
}
