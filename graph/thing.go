package graph

import (
	"fmt"
	"time"
)

// NoSuchPropertyError is returned by typed Thing accessors when the entity
// carries no triple for the requested predicate.
type NoSuchPropertyError struct {
	Entity   string // ID of the entity that was inspected.
	Property string // Predicate that was requested.
}

func (e *NoSuchPropertyError) Error() string {
	return fmt.Sprintf("graph: entity %q has no property %q", e.Entity, e.Property)
}

// Thing is a passive wrapper around an entity reply from the graph.
// It holds the payload as received and exposes typed accessors over its
// triples; it never talks to the graph itself.
type Thing struct {
	payload *EntityPayload
}

// NewThing wraps an entity payload. Useful in tests and for callers that
// already hold a decoded reply.
func NewThing(payload *EntityPayload) *Thing {
	return &Thing{payload: payload}
}

// ID returns the entity ID of the wrapped payload.
func (t *Thing) ID() string {
	return t.payload.ID
}

// Updated returns the payload's update timestamp.
func (t *Thing) Updated() time.Time {
	return t.payload.UpdatedAt
}

// find returns the object of the first triple matching the predicate.
func (t *Thing) find(predicate string) (any, bool) {
	for _, triple := range t.payload.Triples {
		if triple.Predicate == predicate {
			return triple.Object, true
		}
	}
	return nil, false
}

// String returns the first value for the predicate as a string.
func (t *Thing) String(predicate string) (string, error) {
	object, ok := t.find(predicate)
	if !ok {
		return "", &NoSuchPropertyError{Entity: t.payload.ID, Property: predicate}
	}

	switch v := object.(type) {
	case string:
		return v, nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// Int returns the first value for the predicate as an int64.
// JSON numbers decode as float64, so those are converted.
func (t *Thing) Int(predicate string) (int64, error) {
	object, ok := t.find(predicate)
	if !ok {
		return 0, &NoSuchPropertyError{Entity: t.payload.ID, Property: predicate}
	}

	switch v := object.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("graph: property %q of %q is %T, not a number", predicate, t.payload.ID, object)
	}
}

// Float returns the first value for the predicate as a float64.
func (t *Thing) Float(predicate string) (float64, error) {
	object, ok := t.find(predicate)
	if !ok {
		return 0, &NoSuchPropertyError{Entity: t.payload.ID, Property: predicate}
	}

	switch v := object.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("graph: property %q of %q is %T, not a number", predicate, t.payload.ID, object)
	}
}

// Bool returns the first value for the predicate as a bool.
func (t *Thing) Bool(predicate string) (bool, error) {
	object, ok := t.find(predicate)
	if !ok {
		return false, &NoSuchPropertyError{Entity: t.payload.ID, Property: predicate}
	}

	v, isBool := object.(bool)
	if !isBool {
		return false, fmt.Errorf("graph: property %q of %q is %T, not a bool", predicate, t.payload.ID, object)
	}
	return v, nil
}

// Time returns the first value for the predicate parsed as RFC 3339.
func (t *Thing) Time(predicate string) (time.Time, error) {
	value, err := t.String(predicate)
	if err != nil {
		return time.Time{}, err
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("graph: parsing property %q of %q: %w", predicate, t.payload.ID, err)
	}
	return parsed, nil
}

// Strings returns every value for the predicate as strings, in triple order.
// A predicate with no triples yields an empty slice, not an error.
func (t *Thing) Strings(predicate string) []string {
	var values []string
	for _, triple := range t.payload.Triples {
		if triple.Predicate != predicate {
			continue
		}
		if s, ok := triple.Object.(string); ok {
			values = append(values, s)
		} else {
			values = append(values, fmt.Sprintf("%v", triple.Object))
		}
	}
	return values
}

// Related returns the IDs of entities referenced by the predicate.
// Only string objects are considered; literals of other types are skipped.
func (t *Thing) Related(predicate string) []string {
	var ids []string
	for _, triple := range t.payload.Triples {
		if triple.Predicate != predicate {
			continue
		}
		if id, ok := triple.Object.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
