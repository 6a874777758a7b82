package curation

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Tally counts occurrences by name. Counts only ever grow.
type Tally map[string]int

func (t Tally) Add(name string, n int) {
	t[name] += n
}

// Merge adds every count of other into t.
func (t Tally) Merge(other Tally) {
	for name, n := range other {
		t[name] += n
	}
}

func (t Tally) Get(name string) int {
	return t[name]
}

func (t Tally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Keys returns the names in t, sorted.
func (t Tally) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}

func (t Tally) String() string {
	parts := make([]string, 0, len(t))
	for _, k := range t.Keys() {
		parts = append(parts, fmt.Sprintf("%s: %d", k, t[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
