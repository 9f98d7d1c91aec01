package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var (
	// ErrEmptyInput is returned by Parse when the input holds no JSON value
	ErrEmptyInput = errors.New("collection: empty input")
	// ErrTrailingData is returned by Parse when a second value follows the first
	ErrTrailingData = errors.New("collection: trailing data after JSON value")
)

// Parse decodes exactly one JSON value, keeping object key order and the
// original text of numbers.
func Parse(data []byte) (*Collection, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	c, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}

	return c, nil
}

func decodeValue(dec *json.Decoder) (*Collection, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("collection: unexpected delimiter %q", t)
	case bool:
		return NewBool(t), nil
	case json.Number:
		return NewNumber(t), nil
	case string:
		return NewString(t), nil
	case nil:
		return NewNull(), nil
	default:
		return nil, fmt.Errorf("collection: unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder) (*Collection, error) {
	obj := NewObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("collection: object key is %T, not string", tok)
		}

		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.fields.Set(key, value)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (*Collection, error) {
	arr := NewArray()
	for dec.More() {
		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr.items = append(arr.items, value)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// MarshalJSON encodes the value as compact JSON in document order
func (c *Collection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces c with the parsed document
func (c *Collection) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*c = *parsed
	return nil
}

func (c *Collection) encode(buf *bytes.Buffer) error {
	switch c.Kind() {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(c.b))
	case Number:
		if c.num == "" {
			buf.WriteByte('0')
			return nil
		}
		buf.WriteString(c.num.String())
	case String:
		return encodeString(buf, c.str)
	case Array:
		buf.WriteByte('[')
		for i, item := range c.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		first := true
		for pair := c.fields.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := encodeString(buf, pair.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := pair.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("collection: cannot encode kind %d", c.kind)
	}
	return nil
}

// encodeString writes s as a JSON string without HTML escaping, so text
// such as "Smith & Jones" survives a round trip unchanged.
func encodeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
