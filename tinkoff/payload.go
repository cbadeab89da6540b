package tinkoff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field is a single request parameter. Values are restricted to the scalar
// types the gateway accepts: string, int64 and bool.
type Field struct {
	Name  string
	Value any
}

// Payload is the ordered set of request fields for one operation. It is
// built by a facade method, consumed once by the query executor and then
// discarded; it is never shared across calls. An explicit pair list is used
// instead of a map so that iteration order is deterministic regardless of
// how the fields were added.
type Payload struct {
	fields []Field
}

// NewPayload creates an empty payload.
func NewPayload() *Payload {
	return &Payload{}
}

// Set adds a field, replacing any existing field with the same name.
func (p *Payload) Set(name string, value any) {
	for i := range p.fields {
		if p.fields[i].Name == name {
			p.fields[i].Value = value
			return
		}
	}
	p.fields = append(p.fields, Field{Name: name, Value: value})
}

// Get returns the value of a field and whether it is present.
func (p *Payload) Get(name string) (any, bool) {
	for _, f := range p.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Delete removes a field if present.
func (p *Payload) Delete(name string) {
	for i, f := range p.fields {
		if f.Name == name {
			p.fields = append(p.fields[:i], p.fields[i+1:]...)
			return
		}
	}
}

// Fields returns the pairs in insertion order.
func (p *Payload) Fields() []Field {
	return p.fields
}

// Len returns the number of fields.
func (p *Payload) Len() int {
	return len(p.fields)
}

// MarshalJSON encodes the payload as a JSON object in insertion order.
// Absent fields are simply never written, which is how the "omit null
// values" wire rule is realized: optional parameters are only added to the
// payload when the caller supplied them.
func (p *Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// formatValue renders a field value in the canonical form used by the
// signature algorithm: base-10 for integers, true/false for booleans.
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
