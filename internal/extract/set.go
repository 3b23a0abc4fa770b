package extract

import "strings"

// orderedSet collects distinct strings in first-seen order.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(capacity int) *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}, capacity), items: make([]string, 0, capacity)}
}

func (s *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) list() []string {
	return s.items
}

// distinct returns the non-empty values of in, deduplicated, in first-seen order.
func distinct(in []string) []string {
	set := newOrderedSet(len(in))
	for _, v := range in {
		set.add(v)
	}
	return set.list()
}

func lowerSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return out
}
