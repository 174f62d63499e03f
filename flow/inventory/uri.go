package inventory

import (
	"maps"
	"net/url"
)

// Depth controls how many levels of child objects the inventory returns.
type Depth string

const (
	DepthZero Depth = "0"
	DepthOne  Depth = "1"
	DepthTwo  Depth = "2"
	DepthAll  Depth = "all"
)

// URI locates an inventory resource or collection.
//
// URI values are immutable: Depth and QueryParam return a modified copy and
// leave the receiver untouched, so a URI can be shared between goroutines and
// reused as a template.
type URI struct {
	path  string
	depth Depth
	query url.Values
}

// NewResourceURI addresses a single object, e.g.
// NewResourceURI(GenericVnf, "vnf-1").
func NewResourceURI(t ObjectType, values ...string) URI {
	return URI{path: fill(t.Name, t.template, values)}
}

// NewPluralURI addresses a collection, e.g.
// NewPluralURI(ServiceInstances, customerID, serviceType).
func NewPluralURI(p ObjectPlural, values ...string) URI {
	return URI{path: fill(p.Name, p.template, values)}
}

// NewNodesURI addresses a collection through the global /nodes index.
func NewNodesURI(p ObjectPlural) URI {
	return URI{path: p.nodes}
}

// NewNodesResourceURI addresses a single object by id through /nodes, which
// needs no parent keys.
func NewNodesResourceURI(t ObjectType, id string) URI {
	return URI{path: "/nodes/" + t.Name + "s/" + t.Name + "/" + escapeSegment(id)}
}

// NewRelatedURI addresses the objects of plural related to parent, e.g. the
// l3-networks related to a service instance.
func NewRelatedURI(parent URI, p ObjectPlural) URI {
	return URI{path: parent.path + "/related-to/" + p.relatedSegment()}
}

// Depth returns a copy of u requesting depth d.
func (u URI) Depth(d Depth) URI {
	c := u.clone()
	c.depth = d
	return c
}

// QueryParam returns a copy of u with key set to value.
func (u URI) QueryParam(key, value string) URI {
	c := u.clone()
	if c.query == nil {
		c.query = url.Values{}
	}
	c.query.Set(key, value)
	return c
}

// Path returns the escaped path without query string.
func (u URI) Path() string {
	return u.path
}

// Query returns the query parameters including depth. The result is a copy.
func (u URI) Query() url.Values {
	q := url.Values{}
	for k, v := range u.query {
		q[k] = append([]string(nil), v...)
	}
	if u.depth != "" {
		q.Set("depth", string(u.depth))
	}
	return q
}

// Build renders the path and the sorted query string.
func (u URI) Build() string {
	q := u.Query()
	if len(q) == 0 {
		return u.path
	}
	return u.path + "?" + q.Encode()
}

// String implements fmt.Stringer.
func (u URI) String() string {
	return u.Build()
}

func (u URI) clone() URI {
	c := URI{path: u.path, depth: u.depth}
	if u.query != nil {
		c.query = maps.Clone(u.query)
		for k, v := range c.query {
			c.query[k] = append([]string(nil), v...)
		}
	}
	return c
}

func escapeSegment(v string) string {
	return url.PathEscape(v)
}
