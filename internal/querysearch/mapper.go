// Package querysearch turns a server-driven search schema into the props a
// search widget needs: ordered key groups, and one value handler per key.
package querysearch

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/reference"
)

// ErrUnknownReference is returned for a schema field whose reference does
// not name a known (or configured) reference kind.
var ErrUnknownReference = errors.New("unknown schema reference")

// DefaultDistinctLimit caps distinct-value suggestions.
const DefaultDistinctLimit = 20

var matchOperators = []string{"=", "!="}

// KeyItem is one selectable search key.
type KeyItem struct {
	Label     string         `json:"label"`
	Name      string         `json:"name"`
	DataType  string         `json:"data_type,omitempty"`
	Reference reference.Kind `json:"reference,omitempty"`
	Operators []string       `json:"operators,omitempty"`
	ValueSet  []ValueItem    `json:"value_set,omitempty"`
}

// KeyItemSet is one titled group of keys, in schema order.
type KeyItemSet struct {
	Title string    `json:"title"`
	Items []KeyItem `json:"items"`
}

// Props is the full output of one mapping.
type Props struct {
	KeyItemSets     []KeyItemSet
	ValueHandlerMap map[string]ValueHandler
}

// Empty reports whether the props were never computed.
func (p Props) Empty() bool {
	return p.KeyItemSets == nil
}

// MapperOptions scope distinct-value handlers.
type MapperOptions struct {
	ResourceType  string
	Filters       []api.Filter
	DistinctLimit int
}

// Mapper builds Props from schema groups against a reference Store.
type Mapper struct {
	store    *reference.Store
	distinct DistinctSource
	opts     MapperOptions
}

// NewMapper returns a Mapper.
func NewMapper(store *reference.Store, distinct DistinctSource, opts MapperOptions) *Mapper {
	if opts.DistinctLimit <= 0 {
		opts.DistinctLimit = DefaultDistinctLimit
	}
	return &Mapper{store: store, distinct: distinct, opts: opts}
}

// Store returns the reference store the mapper reads.
func (m *Mapper) Store() *reference.Store {
	return m.store
}

// ValidateSchema checks that every reference resolves to a kind the store
// carries. It is meant to run once, when a schema is loaded.
func (m *Mapper) ValidateSchema(groups []api.SearchSchemaGroup) error {
	for _, g := range groups {
		for _, item := range g.Items {
			if strings.TrimSpace(item.Key) == "" {
				return fmt.Errorf("schema group %q: item without key", g.Title)
			}
			if len(item.Enums) > 0 || item.Reference == "" {
				continue
			}
			if _, err := m.resolve(item.Reference); err != nil {
				return fmt.Errorf("field %q: %w", item.Key, err)
			}
		}
	}
	return nil
}

func (m *Mapper) resolve(ref string) (*reference.Cache, error) {
	kind, err := reference.ParseKind(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReference, ref)
	}
	c := m.store.Cache(kind)
	if c == nil {
		return nil, fmt.Errorf("%w: %q is not loaded by this console", ErrUnknownReference, ref)
	}
	return c, nil
}

// Build maps groups to Props. The output depends only on the schema and the
// current cache contents, so repeated calls with unchanged inputs yield
// equal Props.
func (m *Mapper) Build(groups []api.SearchSchemaGroup) (Props, error) {
	props := Props{
		KeyItemSets:     make([]KeyItemSet, 0, len(groups)),
		ValueHandlerMap: make(map[string]ValueHandler),
	}

	for _, g := range groups {
		set := KeyItemSet{Title: g.Title, Items: make([]KeyItem, 0, len(g.Items))}
		for _, field := range g.Items {
			item := KeyItem{
				Label:    field.Name,
				Name:     field.Key,
				DataType: field.DataType,
			}
			if item.Label == "" {
				item.Label = field.Key
			}

			switch {
			case len(field.Enums) > 0:
				item.Operators = append([]string(nil), matchOperators...)
				props.ValueHandlerMap[field.Key] = newEnumHandler(field.Enums)
			case field.Reference != "":
				c, err := m.resolve(field.Reference)
				if err != nil {
					return Props{}, fmt.Errorf("field %q: %w", field.Key, err)
				}
				item.Reference = c.Kind()
				item.Operators = append([]string(nil), matchOperators...)
				item.ValueSet = valueSet(c.Items())
				props.ValueHandlerMap[field.Key] = &ReferenceHandler{Reference: c.Kind(), cache: c}
			default:
				props.ValueHandlerMap[field.Key] = &DistinctHandler{
					ResourceType: m.opts.ResourceType,
					Key:          field.Key,
					Filters:      m.opts.Filters,
					Limit:        m.opts.DistinctLimit,
					source:       m.distinct,
				}
			}
			set.Items = append(set.Items, item)
		}
		props.KeyItemSets = append(props.KeyItemSets, set)
	}
	return props, nil
}

// LoadSchemaFile reads schema groups from a YAML (or JSON) file.
func LoadSchemaFile(path string) ([]api.SearchSchemaGroup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var groups []api.SearchSchemaGroup
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return groups, nil
}
