// Package identity provides sets of operator identity strings with
// case-insensitive, whitespace-trimmed membership. The same type backs
// the self-identity set and the exclusion set.
package identity

import (
	"strings"

	"github.com/tiptally-dev/tiptally/internal/model"
)

// Set is a collection of identity strings. Membership tests are
// case-insensitive and ignore surrounding whitespace; the display form
// of each identity is preserved for iteration.
type Set struct {
	display []string
	members map[string]struct{}
}

// NewSet creates a Set from the given names. Blank names are ignored.
func NewSet(names ...string) *Set {
	s := &Set{members: make(map[string]struct{})}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// ParseList splits a comma-separated list of identities into a Set.
// Whitespace around each entry is trimmed and empty entries dropped.
func ParseList(list string) *Set {
	return NewSet(strings.Split(list, ",")...)
}

// Add inserts a name, keeping its display form on first insertion.
func (s *Set) Add(name string) {
	key := model.CanonicalIdentity(name)
	if key == "" {
		return
	}
	if _, ok := s.members[key]; ok {
		return
	}
	s.members[key] = struct{}{}
	s.display = append(s.display, strings.TrimSpace(name))
}

// Contains reports whether name is a member. Safe on a nil Set.
func (s *Set) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.members[model.CanonicalIdentity(name)]
	return ok
}

// Len returns the number of members. Safe on a nil Set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// All returns the members in insertion order, display form.
func (s *Set) All() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.display))
	copy(out, s.display)
	return out
}
