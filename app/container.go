package app

import (
	"sync"

	"github.com/artpar/fieldmap/domain/datapath"
	"github.com/artpar/fieldmap/pkg/ordered"
)

// Container is a named bundle of an effective field mapping and a data
// source. The mapping is fixed at declaration; the data may be swapped
// later, which does not re-resolve inheritance.
type Container struct {
	name   string
	fields *ordered.Map
	model  *Model

	mu   sync.RWMutex
	data any
}

// Name returns the container's canonical name (without any extends
// clause).
func (c *Container) Name() string {
	return c.name
}

// Fields returns a copy of the effective field mapping in declaration
// order.
func (c *Container) Fields() *ordered.Map {
	return c.fields.Clone()
}

// Spec returns the raw processor-spec string stored for a field key.
// The lookup is exact: aliased or guarded keys are found only under
// their full raw key.
func (c *Container) Spec(key string) (string, bool) {
	v, ok := c.fields.Get(key)
	if !ok {
		return "", false
	}
	return toString(v), true
}

// Data returns the container's current data source.
func (c *Container) Data() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// ReplaceData swaps the container's data source.
func (c *Container) ReplaceData(data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
}

// Field reads a nested value from the container's data.
func (c *Container) Field(path ...string) (any, bool) {
	return datapath.Lookup(c.Data(), path...)
}
