package collection

import "sort"

// EditableSet is the set of row ids currently in edit mode
type EditableSet map[string]struct{}

// Add puts id in the set. Adding an existing id is a no-op.
func (s EditableSet) Add(id string) {
	s[id] = struct{}{}
}

// Remove takes id out of the set
func (s EditableSet) Remove(id string) {
	delete(s, id)
}

// Has reports whether id is in the set
func (s EditableSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Keys returns the ids in the set, sorted
func (s EditableSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
