package api

import (
	"context"
	"fmt"
)

// --- Reference Methods ---

// ListResources lists one resource collection, e.g. ("inventory", "region").
// A non-zero opts.Timeout bounds the call on top of the client timeout.
func (c *Client) ListResources(ctx context.Context, service, resource string, opts ListOptions) (*ListResponse[Record], error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	payload := map[string]any{"query": opts.Query}
	data, err := c.post(ctx, fmt.Sprintf("/%s/%s/list", service, resource), payload)
	if err != nil {
		return nil, err
	}
	return decodeResults[Record](data)
}

// DistinctValues returns the distinct values of one field of a resource type.
func (c *Client) DistinctValues(ctx context.Context, input DistinctInput) ([]string, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	data, err := c.post(ctx, "/api/stat/distinct", input)
	if err != nil {
		return nil, err
	}
	resp, err := decodeResults[any](data)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(resp.Results))
	for _, raw := range resp.Results {
		switch v := raw.(type) {
		case nil:
			continue
		case map[string]any:
			values = append(values, Record(v).String("key"))
		default:
			values = append(values, Record{"v": v}.String("v"))
		}
	}
	return values, nil
}

// SearchSchema fetches the search schema groups for a resource type.
func (c *Client) SearchSchema(ctx context.Context, resourceType string) ([]SearchSchemaGroup, error) {
	data, err := c.get(ctx, buildQuery("/api/schema/search", QueryParams{"resource_type": resourceType}))
	if err != nil {
		return nil, err
	}
	return decodeList[SearchSchemaGroup](data)
}
