// Package collection provides an ordered, polymorphic JSON value tree.
//
// Every Open States response is returned as a *Collection. A Collection is
// one of six kinds (null, bool, number, string, array, object); objects keep
// the key order of the document they were parsed from and numbers keep their
// original text, so a parsed document marshals back to the same JSON.
package collection

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the JSON type held by a Collection
type Kind int

const (
	// Null is the JSON null value
	Null Kind = iota
	// Bool is a JSON boolean
	Bool
	// Number is a JSON number, stored as its original text
	Number
	// String is a JSON string
	String
	// Array is an ordered sequence of values
	Array
	// Object is an ordered mapping from string keys to values
	Object
)

// String returns the lower-case JSON name of the kind
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Collection is a node of a decoded JSON document.
//
// A nil *Collection behaves like JSON null for every read accessor.
// Collections are not safe for concurrent mutation.
type Collection struct {
	kind   Kind
	b      bool
	num    json.Number
	str    string
	items  []*Collection
	fields *orderedmap.OrderedMap[string, *Collection]
}

// NewObject returns an empty object
func NewObject() *Collection {
	return &Collection{
		kind:   Object,
		fields: orderedmap.New[string, *Collection](),
	}
}

// NewArray returns an array holding items in the given order
func NewArray(items ...*Collection) *Collection {
	c := &Collection{kind: Array, items: make([]*Collection, 0, len(items))}
	c.items = append(c.items, items...)
	return c
}

// NewString returns a string value
func NewString(s string) *Collection {
	return &Collection{kind: String, str: s}
}

// NewNumber returns a number value. The text is not validated.
func NewNumber(n json.Number) *Collection {
	return &Collection{kind: Number, num: n}
}

// NewBool returns a boolean value
func NewBool(b bool) *Collection {
	return &Collection{kind: Bool, b: b}
}

// NewNull returns a null value
func NewNull() *Collection {
	return &Collection{kind: Null}
}

// FromValue converts a plain Go value into a Collection.
//
// Maps are converted with their keys sorted, since Go maps carry no order.
// Values that are not JSON-like are round-tripped through encoding/json.
func FromValue(v any) *Collection {
	switch t := v.(type) {
	case nil:
		return NewNull()
	case *Collection:
		if t == nil {
			return NewNull()
		}
		return t
	case bool:
		return NewBool(t)
	case string:
		return NewString(t)
	case json.Number:
		return NewNumber(t)
	case int:
		return NewNumber(json.Number(strconv.Itoa(t)))
	case int64:
		return NewNumber(json.Number(strconv.FormatInt(t, 10)))
	case int32:
		return NewNumber(json.Number(strconv.FormatInt(int64(t), 10)))
	case uint64:
		return NewNumber(json.Number(strconv.FormatUint(t, 10)))
	case float64:
		if math.IsInf(t, 0) || math.IsNaN(t) {
			return NewNull()
		}
		return NewNumber(json.Number(strconv.FormatFloat(t, 'f', -1, 64)))
	case float32:
		return NewNumber(json.Number(strconv.FormatFloat(float64(t), 'f', -1, 32)))
	case []any:
		arr := NewArray()
		for _, item := range t {
			arr.Append(FromValue(item))
		}
		return arr
	case []string:
		arr := NewArray()
		for _, item := range t {
			arr.Append(NewString(item))
		}
		return arr
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromValue(t[k]))
		}
		return obj
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return NewNull()
		}
		c, err := Parse(data)
		if err != nil {
			return NewNull()
		}
		return c
	}
}

// Kind returns the JSON kind of the value
func (c *Collection) Kind() Kind {
	if c == nil {
		return Null
	}
	return c.kind
}

// IsNull reports whether the value is JSON null
func (c *Collection) IsNull() bool {
	return c.Kind() == Null
}

// Set stores value under key, keeping the original position of an existing
// key. It is a no-op on non-objects. Set returns c for chaining.
func (c *Collection) Set(key string, value *Collection) *Collection {
	if c.Kind() != Object {
		return c
	}
	if value == nil {
		value = NewNull()
	}
	c.fields.Set(key, value)
	return c
}

// Append adds value to the end of an array. It is a no-op on non-arrays.
func (c *Collection) Append(value *Collection) *Collection {
	if c.Kind() != Array {
		return c
	}
	if value == nil {
		value = NewNull()
	}
	c.items = append(c.items, value)
	return c
}

// Get returns the value stored under key in an object
func (c *Collection) Get(key string) (*Collection, bool) {
	if c.Kind() != Object {
		return nil, false
	}
	return c.fields.Get(key)
}

// Has reports whether an object contains key
func (c *Collection) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Index returns the i-th element of an array
func (c *Collection) Index(i int) (*Collection, bool) {
	if c.Kind() != Array || i < 0 || i >= len(c.items) {
		return nil, false
	}
	return c.items[i], true
}

// Len returns the number of elements of an array or fields of an object,
// and zero for scalars.
func (c *Collection) Len() int {
	switch c.Kind() {
	case Array:
		return len(c.items)
	case Object:
		return c.fields.Len()
	default:
		return 0
	}
}

// Keys returns the keys of an object in document order
func (c *Collection) Keys() []string {
	if c.Kind() != Object {
		return nil
	}
	keys := make([]string, 0, c.fields.Len())
	for pair := c.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Items returns the elements of an array, or the values of an object in
// document order.
func (c *Collection) Items() []*Collection {
	switch c.Kind() {
	case Array:
		out := make([]*Collection, len(c.items))
		copy(out, c.items)
		return out
	case Object:
		out := make([]*Collection, 0, c.fields.Len())
		for pair := c.fields.Oldest(); pair != nil; pair = pair.Next() {
			out = append(out, pair.Value)
		}
		return out
	default:
		return nil
	}
}

// Sub returns the value at key wrapped as a collection of its own.
// Arrays and objects are returned as is, a missing or null value becomes an
// empty object and a scalar becomes a one-element array.
func (c *Collection) Sub(key string) *Collection {
	v, ok := c.Get(key)
	if !ok || v.IsNull() {
		return NewObject()
	}
	switch v.Kind() {
	case Array, Object:
		return v
	default:
		return NewArray(v)
	}
}

// Str returns the string held by a String value
func (c *Collection) Str() (string, bool) {
	if c.Kind() != String {
		return "", false
	}
	return c.str, true
}

// Int64 returns the value of a Number that fits an int64
func (c *Collection) Int64() (int64, bool) {
	if c.Kind() != Number {
		return 0, false
	}
	n, err := c.num.Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float64 returns the value of a Number as a float64
func (c *Collection) Float64() (float64, bool) {
	if c.Kind() != Number {
		return 0, false
	}
	f, err := c.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool returns the value of a Bool
func (c *Collection) Bool() (bool, bool) {
	if c.Kind() != Bool {
		return false, false
	}
	return c.b, true
}

// String renders the value for display: the raw text for strings and
// numbers, and compact JSON for everything else.
func (c *Collection) String() string {
	switch c.Kind() {
	case String:
		return c.str
	case Number:
		return c.num.String()
	default:
		data, err := c.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// Interface converts the value into plain Go values: map[string]any, []any,
// string, bool, nil, and int for integral numbers or float64 otherwise.
// Numbers that fit neither without loss stay json.Number.
func (c *Collection) Interface() any {
	switch c.Kind() {
	case Bool:
		return c.b
	case Number:
		return numberValue(c.num)
	case String:
		return c.str
	case Array:
		out := make([]any, len(c.items))
		for i, item := range c.items {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, c.fields.Len())
		for pair := c.fields.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = pair.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// numberValue returns n as an int, a float64, or n itself when converting
// would overflow or drop digits of an integer.
func numberValue(n json.Number) any {
	text := n.String()
	if i, err := strconv.Atoi(text); err == nil {
		return i
	}
	if !strings.ContainsAny(text, ".eE") {
		return n
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) {
		return n
	}
	return f
}
