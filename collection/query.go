package collection

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Query evaluates a JSONPath expression (e.g. "$[*].full_name" or
// "$.sources[0].url") against the value and returns every match.
// Objects in the results are rebuilt from plain maps, so their keys come
// back sorted rather than in document order.
func (c *Collection) Query(path string) ([]*Collection, error) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", path, err)
	}

	results := expr.Get(c.Interface())
	out := make([]*Collection, 0, len(results))
	for _, r := range results {
		out = append(out, FromValue(r))
	}
	return out, nil
}

// Records returns the object elements of an array. A single object is
// returned as a one-element slice; anything else yields nil.
func (c *Collection) Records() []*Collection {
	switch c.Kind() {
	case Object:
		return []*Collection{c}
	case Array:
		records := make([]*Collection, 0, len(c.items))
		for _, item := range c.items {
			if item.Kind() == Object {
				records = append(records, item)
			}
		}
		return records
	default:
		return nil
	}
}
