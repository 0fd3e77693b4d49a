// Package store keeps the in-process copy of each entity collection that the
// list screens, dashboard and exports read from.
package store

import (
	"context"
	"slices"
	"sync"
)

// Loader fetches the full collection from the backing repository.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Collection is an ordered, concurrency-safe set of entities keyed by ID.
type Collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	loaded bool
	id     func(T) string
	cmp    func(a, b T) int
	load   Loader[T]

	// Puts and removes made while a Load is reading are replayed on top of
	// its result so a reload never drops a local write.
	loading int
	journal []change[T]
}

type change[T any] struct {
	id      string
	value   T
	removed bool
}

// NewCollection creates an empty collection. cmp defines the list ordering
// and must match the repository ListAll ordering.
func NewCollection[T any](id func(T) string, cmp func(a, b T) int, load Loader[T]) *Collection[T] {
	return &Collection[T]{id: id, cmp: cmp, load: load}
}

// Load replaces the contents with a fresh read from the repository. On error
// the previous contents are kept.
func (c *Collection[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()

	items, err := c.load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading--
	if err != nil {
		c.trimJournal()
		return err
	}

	items = slices.Clone(items)
	slices.SortStableFunc(items, c.cmp)
	c.items = items
	for _, ch := range c.journal {
		if ch.removed {
			c.remove(ch.id)
		} else {
			c.put(ch.value)
		}
	}
	c.trimJournal()
	c.loaded = true
	return nil
}

func (c *Collection[T]) trimJournal() {
	if c.loading == 0 {
		c.journal = nil
	}
}

// Loaded reports whether Load has succeeded at least once.
func (c *Collection[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// List returns a snapshot copy.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the entity with id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Put adds the entity or replaces the one with the same ID, keeping order.
func (c *Collection[T]) Put(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading > 0 {
		c.journal = append(c.journal, change[T]{id: c.id(v), value: v})
	}
	c.put(v)
}

func (c *Collection[T]) put(v T) {
	if i := c.indexOf(c.id(v)); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
	pos, _ := slices.BinarySearchFunc(c.items, v, c.cmp)
	// Insert after equal keys so ties keep arrival order.
	for pos < len(c.items) && c.cmp(c.items[pos], v) == 0 {
		pos++
	}
	c.items = slices.Insert(c.items, pos, v)
}

// Remove deletes the entity with id and reports whether it was present.
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading > 0 {
		c.journal = append(c.journal, change[T]{id: id, removed: true})
	}
	return c.remove(id)
}

func (c *Collection[T]) remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = slices.Delete(c.items, i, i+1)
	return true
}

// Filter returns the entities matching pred, in list order.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []T{}
	for _, v := range c.items {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

func (c *Collection[T]) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(v T) bool { return c.id(v) == id })
}
