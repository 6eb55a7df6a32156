// pattern: Imperative Shell

package catalog

import (
	"sync"
)

// Change describes the outcome of a reload. Catalog is the current
// catalog, which is the previous one when Err is set.
type Change struct {
	Version uint64
	Catalog *Catalog
	Err     error
}

// Store holds the current catalog of a running process and tells
// subscribers when it changes.
type Store struct {
	mu      sync.RWMutex
	cat     *Catalog
	err     error
	version uint64
	subs    []func(Change)
}

func NewStore(c *Catalog) *Store {
	return &Store{cat: c, version: 1}
}

// Catalog returns the current catalog.
func (s *Store) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Version increases with every successful Update.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// LastError returns the error of the latest reload, nil after a success.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Subscribe registers fn to run after every Update.
func (s *Store) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Update installs c, or records err and keeps the current catalog. The
// handles cached by the replaced catalog's layouts are dropped. It has
// the signature of a ReloadFunc.
func (s *Store) Update(c *Catalog, err error) {
	s.mu.Lock()
	var old *Catalog
	if err == nil && c != nil {
		old, s.cat = s.cat, c
		s.version++
	}
	s.err = err
	change := Change{Version: s.version, Catalog: s.cat, Err: err}
	subs := append([]func(Change){}, s.subs...)
	s.mu.Unlock()

	if old != nil {
		old.invalidate()
	}
	for _, fn := range subs {
		fn(change)
	}
}

func (c *Catalog) invalidate() {
	for _, e := range c.entries {
		e.Layout.Invalidate()
	}
}
