package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// --- API Response Envelope ---

type apiResponse[T any] struct {
	Data  T       `json:"data"`
	Error *apiErr `json:"error,omitempty"`
}

type apiErr struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListResponse is the {"results": [...]} shape returned by list endpoints.
type ListResponse[T any] struct {
	Results    []T `json:"results"`
	TotalCount int `json:"total_count,omitempty"`
}

// --- Records ---

// Record is a loosely typed entity DTO as returned by list endpoints.
type Record map[string]any

// String returns the field as a trimmed string, or "" when absent.
func (r Record) String(field string) string {
	raw, ok := r[field]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Nested returns the nested object at field, or nil.
func (r Record) Nested(field string) Record {
	if m, ok := r[field].(map[string]any); ok {
		return Record(m)
	}
	return nil
}

// --- List Queries ---

// Filter is one query condition.
type Filter struct {
	Key      string `json:"k" yaml:"k"`
	Value    any    `json:"v" yaml:"v"`
	Operator string `json:"o" yaml:"o"`
}

// Query is the body sent with list and stat requests.
type Query struct {
	Only   []string `json:"only,omitempty"`
	Filter []Filter `json:"filter,omitempty"`
}

// ListOptions controls one list call.
type ListOptions struct {
	Query   Query
	Timeout time.Duration
}

// DistinctInput requests the distinct values of one field.
type DistinctInput struct {
	ResourceType string   `json:"resource_type"`
	Distinct     string   `json:"distinct"`
	Filter       []Filter `json:"filter,omitempty"`
	Search       string   `json:"search,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

// --- Search Schema ---

// SearchSchemaGroup is one titled group of filterable fields.
type SearchSchemaGroup struct {
	Title string             `json:"title" yaml:"title"`
	Items []SearchSchemaItem `json:"items" yaml:"items"`
}

// SearchSchemaItem describes one filterable field.
type SearchSchemaItem struct {
	Key       string     `json:"key" yaml:"key"`
	Name      string     `json:"name" yaml:"name"`
	DataType  string     `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Enums     EnumValues `json:"enums,omitempty" yaml:"enums,omitempty"`
	Reference string     `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// EnumValue is one member of an enumerated field.
type EnumValue struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// EnumValues accepts either a list (of strings or {key,label}) or a
// {key: label} object. Object keys are sorted.
type EnumValues []EnumValue

func (e *EnumValues) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		out := make(EnumValues, 0, len(list))
		for _, raw := range list {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				out = append(out, EnumValue{Key: s, Label: s})
				continue
			}
			var v EnumValue
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("decode enum: %w", err)
			}
			if v.Label == "" {
				v.Label = v.Key
			}
			out = append(out, v)
		}
		*e = out
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode enums: %w", err)
	}
	out := make(EnumValues, 0, len(obj))
	for key, raw := range obj {
		label := key
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			label = s
		} else {
			var nested struct {
				Label string `json:"label"`
				Name  string `json:"name"`
			}
			if err := json.Unmarshal(raw, &nested); err == nil {
				if nested.Label != "" {
					label = nested.Label
				} else if nested.Name != "" {
					label = nested.Name
				}
			}
		}
		out = append(out, EnumValue{Key: key, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	*e = out
	return nil
}

func (e *EnumValues) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		out := make(EnumValues, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				out = append(out, EnumValue{Key: item.Value, Label: item.Value})
				continue
			}
			var v EnumValue
			if err := item.Decode(&v); err != nil {
				return fmt.Errorf("decode enum: %w", err)
			}
			if v.Label == "" {
				v.Label = v.Key
			}
			out = append(out, v)
		}
		*e = out
		return nil
	case yaml.MappingNode:
		out := make(EnumValues, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			label := key
			val := node.Content[i+1]
			if val.Kind == yaml.ScalarNode && val.Value != "" {
				label = val.Value
			} else if val.Kind == yaml.MappingNode {
				var nested struct {
					Label string `yaml:"label"`
					Name  string `yaml:"name"`
				}
				if err := val.Decode(&nested); err == nil {
					if nested.Label != "" {
						label = nested.Label
					} else if nested.Name != "" {
						label = nested.Name
					}
				}
			}
			out = append(out, EnumValue{Key: key, Label: label})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
		*e = out
		return nil
	}
	return fmt.Errorf("enums: unsupported yaml node kind %d", node.Kind)
}

// --- Auth ---

// LoginInput defines the credentials for logging in.
type LoginInput struct {
	Username string `json:"username"`
}

// LoginResponse contains the session information after successful login.
type LoginResponse struct {
	APIKey   string `json:"api_key"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// --- Query ---

// QueryParams is a map of URL query parameters.
type QueryParams map[string]string
