// Package multidict provides an ordered multi-valued mapping.
// Each key owns a non-empty ordered sequence of values while keeping
// dict-compatible single-value access that returns the first element.
// It is used by the web layer to carry query and form parameters without
// losing duplicate keys or their order.
package multidict

import (
	"fmt"
	"net/url"
	"slices"
)

// KeyError is returned when a key is accessed that does not exist in the dict.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("multidict: no such key %q", e.Key)
}

// Dict is an ordered mapping from string keys to sequences of values.
// Keys iterate in first-insertion order. A key never maps to an empty
// sequence; removing the last value removes the key.
//
// The zero value is not usable, construct with New or FromValues.
type Dict[V any] struct {
	order  []string
	values map[string][]V
}

// New returns an empty Dict.
func New[V any]() *Dict[V] {
	return &Dict[V]{
		order:  make([]string, 0),
		values: make(map[string][]V),
	}
}

// FromValues builds a Dict[string] from url.Values, preserving the order of
// the keys as returned by iteration and the order of each value list.
// url.Values iteration order is not deterministic, so the keys are sorted
// to keep the result reproducible.
func FromValues(values url.Values) *Dict[string] {
	dict := New[string]()

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		for _, value := range values[key] {
			dict.Add(key, value)
		}
	}
	return dict
}

// Get returns the first value for key. It returns a *KeyError if the key
// is not present.
func (d *Dict[V]) Get(key string) (V, error) {
	list, ok := d.values[key]
	if !ok {
		var zero V
		return zero, &KeyError{Key: key}
	}
	return list[0], nil
}

// GetDefault returns the first value for key, or fallback if the key is
// not present.
func (d *Dict[V]) GetDefault(key string, fallback V) V {
	if list, ok := d.values[key]; ok {
		return list[0]
	}
	return fallback
}

// GetList returns a copy of the full value sequence for key. A missing key
// yields an empty slice, matching getlist semantics.
func (d *Dict[V]) GetList(key string) []V {
	list, ok := d.values[key]
	if !ok {
		return []V{}
	}
	return slices.Clone(list)
}

// Has reports whether key is present.
func (d *Dict[V]) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Add appends value to the sequence owned by key, creating the key at the
// end of the key order if it does not exist yet.
func (d *Dict[V]) Add(key string, value V) {
	if _, ok := d.values[key]; !ok {
		d.order = append(d.order, key)
	}
	d.values[key] = append(d.values[key], value)
}

// Set replaces the whole sequence for key with the single given value.
func (d *Dict[V]) Set(key string, value V) {
	d.SetList(key, []V{value})
}

// SetList replaces the whole sequence for key. Setting an empty list
// deletes the key, preserving the invariant that no key owns an empty
// sequence.
func (d *Dict[V]) SetList(key string, values []V) {
	if len(values) == 0 {
		d.Delete(key)
		return
	}
	if _, ok := d.values[key]; !ok {
		d.order = append(d.order, key)
	}
	d.values[key] = slices.Clone(values)
}

// Delete removes key and its values. Deleting a missing key is a no-op.
func (d *Dict[V]) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	d.order = slices.DeleteFunc(d.order, func(k string) bool {
		return k == key
	})
}

// Len returns the number of distinct keys.
func (d *Dict[V]) Len() int {
	return len(d.order)
}

// Keys returns the keys in first-insertion order.
func (d *Dict[V]) Keys() []string {
	return slices.Clone(d.order)
}

// Values returns the first value of every key, in key order.
func (d *Dict[V]) Values() []V {
	result := make([]V, 0, len(d.order))
	for _, key := range d.order {
		result = append(result, d.values[key][0])
	}
	return result
}

// Item is a single key/value pair produced by Items.
type Item[V any] struct {
	Key   string
	Value V
}

// Items returns every key/value pair, keys in insertion order and values in
// sequence order within each key.
func (d *Dict[V]) Items() []Item[V] {
	result := make([]Item[V], 0, len(d.order))
	for _, key := range d.order {
		for _, value := range d.values[key] {
			result = append(result, Item[V]{Key: key, Value: value})
		}
	}
	return result
}

// Copy returns a shallow copy of the dict. The value sequences are cloned,
// the values themselves are not.
func (d *Dict[V]) Copy() *Dict[V] {
	clone := New[V]()
	clone.order = slices.Clone(d.order)
	for key, list := range d.values {
		clone.values[key] = slices.Clone(list)
	}
	return clone
}

// Update assigns every key of other into d, replacing existing sequences.
// New keys are appended to the key order in other's order.
func (d *Dict[V]) Update(other *Dict[V]) {
	for _, key := range other.order {
		d.SetList(key, other.values[key])
	}
}

// Extend appends every value of other onto d, accumulating sequences instead
// of replacing them.
func (d *Dict[V]) Extend(other *Dict[V]) {
	for _, key := range other.order {
		for _, value := range other.values[key] {
			d.Add(key, value)
		}
	}
}

// Encode converts a Dict[string] back into url.Values.
func Encode(d *Dict[string]) url.Values {
	values := make(url.Values, d.Len())
	for _, key := range d.Keys() {
		values[key] = d.GetList(key)
	}
	return values
}
