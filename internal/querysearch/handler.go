package querysearch

import (
	"context"
	"strings"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/reference"
)

// HandlerKind tells a search widget where a field's values come from.
type HandlerKind string

const (
	HandlerEnum      HandlerKind = "enum"
	HandlerReference HandlerKind = "reference"
	HandlerDistinct  HandlerKind = "distinct"
)

// ValueItem is one suggestion offered for a field.
type ValueItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ValueHandler sources the acceptable values of one filter field.
type ValueHandler interface {
	Kind() HandlerKind
	Values(ctx context.Context, input string) ([]ValueItem, error)
}

// DistinctSource is the slice of the API client the distinct handler needs.
type DistinctSource interface {
	DistinctValues(ctx context.Context, input api.DistinctInput) ([]string, error)
}

func matches(item ValueItem, input string) bool {
	if input == "" {
		return true
	}
	input = strings.ToLower(input)
	return strings.Contains(strings.ToLower(item.Key), input) ||
		strings.Contains(strings.ToLower(item.Label), input)
}

func hasPrefix(item ValueItem, input string) bool {
	if input == "" {
		return true
	}
	input = strings.ToLower(input)
	return strings.HasPrefix(strings.ToLower(item.Key), input) ||
		strings.HasPrefix(strings.ToLower(item.Label), input)
}

func filterItems(items []ValueItem, input string, match func(ValueItem, string) bool) []ValueItem {
	input = strings.TrimSpace(input)
	out := make([]ValueItem, 0, len(items))
	for _, item := range items {
		if match(item, input) {
			out = append(out, item)
		}
	}
	return out
}

// EnumHandler offers a fixed set of values.
type EnumHandler struct {
	Items []ValueItem
}

func newEnumHandler(enums api.EnumValues) *EnumHandler {
	items := make([]ValueItem, len(enums))
	for i, e := range enums {
		items[i] = ValueItem{Key: e.Key, Label: e.Label}
	}
	return &EnumHandler{Items: items}
}

func (h *EnumHandler) Kind() HandlerKind { return HandlerEnum }

func (h *EnumHandler) Values(_ context.Context, input string) ([]ValueItem, error) {
	return filterItems(h.Items, input, hasPrefix), nil
}

// ReferenceHandler offers the current contents of one reference cache.
type ReferenceHandler struct {
	Reference reference.Kind
	cache     *reference.Cache
}

func (h *ReferenceHandler) Kind() HandlerKind { return HandlerReference }

func (h *ReferenceHandler) Values(_ context.Context, input string) ([]ValueItem, error) {
	return filterItems(valueSet(h.cache.Items()), input, matches), nil
}

// DistinctHandler asks the server for distinct values of Key within
// ResourceType, narrowed by Filters.
type DistinctHandler struct {
	ResourceType string
	Key          string
	Filters      []api.Filter
	Limit        int
	source       DistinctSource
}

func (h *DistinctHandler) Kind() HandlerKind { return HandlerDistinct }

func (h *DistinctHandler) Values(ctx context.Context, input string) ([]ValueItem, error) {
	values, err := h.source.DistinctValues(ctx, api.DistinctInput{
		ResourceType: h.ResourceType,
		Distinct:     h.Key,
		Filter:       h.Filters,
		Search:       strings.TrimSpace(input),
		Limit:        h.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]ValueItem, 0, len(values))
	for _, v := range values {
		out = append(out, ValueItem{Key: v, Label: v})
	}
	return out, nil
}

func valueSet(m reference.Map) []ValueItem {
	sorted := m.Sorted()
	out := make([]ValueItem, len(sorted))
	for i, item := range sorted {
		out[i] = ValueItem{Key: item.Key, Label: item.Label}
	}
	return out
}
