package table

import (
	"strings"
)

// Direction is the ordering applied to a single sort key.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection coerces s into a Direction. Only "asc" (any case) is
// ascending; everything else is treated as descending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// Arrow returns the indicator shown next to a sorted column header.
func (d Direction) Arrow() string {
	if d == Asc {
		return "↑"
	}
	return "↓"
}

// SortSpec is one (column, direction) pair of a SortState.
type SortSpec struct {
	Key       string    `json:"key" yaml:"key"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// SortState is an ordered list of sort keys. Index 0 is the primary key and
// keys are unique.
type SortState []SortSpec

// Clone returns a copy that shares no memory with s.
func (s SortState) Clone() SortState {
	out := make(SortState, len(s))
	copy(out, s)
	return out
}

// Index returns the position of key in s, or -1.
func (s SortState) Index(key string) int {
	for i, spec := range s {
		if spec.Key == key {
			return i
		}
	}
	return -1
}

// Sanitize drops empty and duplicate keys (first occurrence wins) and
// coerces every direction to Asc or Desc.
func (s SortState) Sanitize() SortState {
	out := make(SortState, 0, len(s))
	seen := make(map[string]bool, len(s))
	for _, spec := range s {
		key := strings.TrimSpace(spec.Key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, SortSpec{Key: key, Direction: ParseDirection(string(spec.Direction))})
	}
	return out
}

// String renders s as "amount desc, month asc".
func (s SortState) String() string {
	parts := make([]string, 0, len(s))
	for _, spec := range s {
		parts = append(parts, spec.Key+" "+string(spec.Direction))
	}
	return strings.Join(parts, ", ")
}

// SortInfo describes how a single column currently participates in sorting.
type SortInfo struct {
	Direction Direction
	// Priority is the 1-based rank of the column in the SortState.
	Priority int
}
