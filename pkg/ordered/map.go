// Package ordered provides a string-keyed map that remembers insertion
// order. Field mappings and extraction results are order-sensitive, so
// the engine never stores them in built-in maps.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is a single key/value pair held by a Map.
type Item struct {
	Key   string
	Value any
}

// Map is an insertion-ordered string-keyed map. The zero value is not
// usable; construct with NewMap. Setting an existing key updates the
// value in place and keeps the key's original position.
type Map struct {
	items []Item
	index map[string]int
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// FromItems builds a Map from pairs in the given order. Duplicate keys
// collapse onto the first occurrence, keeping its position.
func FromItems(items ...Item) *Map {
	m := NewMap()
	for _, it := range items {
		m.Set(it.Key, it.Value)
	}
	return m
}

// Set stores value under key. If key already exists its position is
// preserved and only the value changes.
func (m *Map) Set(key string, value any) {
	if i, ok := m.index[key]; ok {
		m.items[i].Value = value
		return
	}
	m.index[key] = len(m.items)
	m.items = append(m.items, Item{Key: key, Value: value})
}

// Get returns the value stored under key and whether it was present.
func (m *Map) Get(key string) (any, bool) {
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.items[i].Value, true
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.index[key]
	return ok
}

// Delete removes key if present and reports whether it was removed.
// Later keys shift down one position.
func (m *Map) Delete(key string) bool {
	i, ok := m.index[key]
	if !ok {
		return false
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	delete(m.index, key)
	for j := i; j < len(m.items); j++ {
		m.index[m.items[j].Key] = j
	}
	return true
}

// Len returns the number of stored pairs.
func (m *Map) Len() int {
	return len(m.items)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.items))
	for i, it := range m.items {
		keys[i] = it.Key
	}
	return keys
}

// Items returns a copy of the pairs in insertion order.
func (m *Map) Items() []Item {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Iterate calls fn for each pair in insertion order. Returning false
// stops the iteration.
func (m *Map) Iterate(fn func(key string, value any) bool) {
	for _, it := range m.items {
		if !fn(it.Key, it.Value) {
			return
		}
	}
}

// Clone returns a shallow copy: pair order and values are copied, the
// values themselves are shared.
func (m *Map) Clone() *Map {
	c := &Map{
		items: make([]Item, len(m.items)),
		index: make(map[string]int, len(m.index)),
	}
	copy(c.items, m.items)
	for k, v := range m.index {
		c.index[k] = v
	}
	return c
}

// Merge sets every pair of other onto m in other's order. Existing keys
// keep their position in m, matching the overlay semantics of template
// inheritance.
func (m *Map) Merge(other *Map) {
	if other == nil {
		return
	}
	for _, it := range other.items {
		m.Set(it.Key, it.Value)
	}
}

// ToMap returns the pairs as a plain map, dropping order. Useful for
// handing results to order-insensitive consumers.
func (m *Map) ToMap() map[string]any {
	out := make(map[string]any, len(m.items))
	for _, it := range m.items {
		out[it.Key] = it.Value
	}
	return out
}

// MarshalJSON encodes the map as a JSON object with keys in insertion
// order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range m.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(it.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", it.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(it.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value of %q: %w", it.Key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the map like fmt prints a built-in map, in insertion
// order. Intended for logs and test failures.
func (m *Map) String() string {
	var buf bytes.Buffer
	buf.WriteString("map[")
	for i, it := range m.items {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%s:%v", it.Key, it.Value)
	}
	buf.WriteByte(']')
	return buf.String()
}
