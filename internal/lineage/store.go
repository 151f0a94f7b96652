// Package lineage holds the taxonomy lookup table built from NCBI's
// fullnamelineage.dmp: taxon ID → display name and ancestor chain.
//
// A Store is built once and is read-only afterwards; it may be shared by any
// number of analyses without locking.
package lineage

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched (errors.Is) by every *NotFoundError.
var ErrNotFound = errors.New("taxon not in lineage database")

// NotFoundError reports a taxon ID absent from the Store.
type NotFoundError struct{ ID string }

func (e *NotFoundError) Error() string { return fmt.Sprintf("taxon %s not in lineage database", e.ID) }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Entry is one taxon's display name and its ancestors, ordered root-ward first
// exactly as they appear in the dump.
type Entry struct {
	Name    string
	Lineage []string
}

// NearestFirst returns the ancestor chain reversed so that index 0 is the
// immediate parent. The returned slice is a copy.
func (e Entry) NearestFirst() []string {
	out := make([]string, len(e.Lineage))
	for i, a := range e.Lineage {
		out[len(out)-1-i] = a
	}
	return out
}

// Store is an immutable taxon ID → Entry table.
type Store struct {
	entries map[string]Entry
	source  string
}

// NewStore builds a Store from an in-memory table. The map is copied.
func NewStore(entries map[string]Entry, source string) *Store {
	m := make(map[string]Entry, len(entries))
	for id, e := range entries {
		m[id] = Entry{Name: e.Name, Lineage: append([]string(nil), e.Lineage...)}
	}
	return &Store{entries: m, source: source}
}

// Lookup returns the entry for id or a *NotFoundError.
// The Lineage slice of the result must not be modified.
func (s *Store) Lookup(id string) (Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, &NotFoundError{ID: id}
	}
	return e, nil
}

// Len reports the number of taxa in the store.
func (s *Store) Len() int { return len(s.entries) }

// Source is the path the store was loaded from ("" for in-memory stores).
func (s *Store) Source() string { return s.source }

// each visits every entry; order is unspecified.
func (s *Store) each(fn func(id string, e Entry) error) error {
	for id, e := range s.entries {
		if err := fn(id, e); err != nil {
			return err
		}
	}
	return nil
}
