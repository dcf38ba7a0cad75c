package reference

import (
	"maps"
	"sort"
)

// Item is the display projection of one remote entity.
type Item struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Map holds items by key. Values handed out by a Cache are copies.
type Map map[string]Item

// Clone returns a shallow copy that never aliases m.
func (m Map) Clone() Map {
	if m == nil {
		return Map{}
	}
	return maps.Clone(m)
}

// Sorted returns the items ordered by label, then key.
func (m Map) Sorted() []Item {
	out := make([]Item, 0, len(m))
	for _, item := range m {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Key < out[j].Key
	})
	return out
}
