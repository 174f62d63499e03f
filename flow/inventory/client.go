package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/bbflow/flow/rest"
)

// Client reads objects from the inventory.
type Client interface {
	// Get decodes the object at uri into out. It returns false with a nil
	// error when the object does not exist.
	Get(ctx context.Context, uri URI, out any) (bool, error)

	// Exists reports whether anything is found at uri.
	Exists(ctx context.Context, uri URI) (bool, error)
}

// HTTPClient is a Client backed by the inventory REST API.
type HTTPClient struct {
	rest *rest.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient wraps a REST client whose base URL points at the versioned
// inventory root, e.g. "https://aai.onap:8443/aai/v24".
func NewHTTPClient(rc *rest.Client) *HTTPClient {
	return &HTTPClient{rest: rc}
}

// Get implements Client.
func (c *HTTPClient) Get(ctx context.Context, uri URI, out any) (bool, error) {
	err := c.rest.Get(ctx, uri.Path(), uri.Query(), out)
	if rest.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inventory get %s: %w", uri.Path(), err)
	}
	return true, nil
}

// Exists implements Client.
func (c *HTTPClient) Exists(ctx context.Context, uri URI) (bool, error) {
	return c.Get(ctx, uri.Depth(DepthZero), nil)
}

// GetList fetches a collection and returns the entries listed under the
// plural's key. A missing collection yields (nil, false, nil); a collection
// without entries yields an empty slice and true.
func GetList[T any](ctx context.Context, c Client, uri URI, plural ObjectPlural) ([]T, bool, error) {
	var raw json.RawMessage
	found, err := c.Get(ctx, uri, &raw)
	if err != nil || !found {
		return nil, found, err
	}

	list := gjson.GetBytes(raw, gjsonKey(plural.Name))
	if !list.Exists() {
		return []T{}, true, nil
	}
	if !list.IsArray() {
		return nil, true, fmt.Errorf("inventory %s: %q is not a list", uri.Path(), plural.Name)
	}

	items := make([]T, 0, len(list.Array()))
	if err := json.Unmarshal([]byte(list.Raw), &items); err != nil {
		return nil, true, fmt.Errorf("failed to decode %s list: %w", plural.Name, err)
	}
	return items, true, nil
}

// gjsonKey escapes the characters gjson treats as path syntax.
func gjsonKey(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '.', '*', '?', '|', '#', '@', '\\':
			out = append(out, '\\')
		}
		out = append(out, name[i])
	}
	return string(out)
}
