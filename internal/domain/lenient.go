package domain

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// decodeLenient decodes a JSON object into T. When the object does not fit T as a
// whole it is decoded one member at a time: members whose shape does not match are
// left at their zero value and returned by name. An error is returned only when
// data is not an object.
func decodeLenient[T any](data []byte) (T, []string, error) {
	var whole T
	if err := json.Unmarshal(data, &whole); err == nil {
		return whole, nil, nil
	}

	members := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, members); err != nil {
		var zero T
		return zero, nil, err
	}

	var out T
	var invalid []string
	for pair := members.Oldest(); pair != nil; pair = pair.Next() {
		single, err := json.Marshal(map[string]json.RawMessage{pair.Key: pair.Value})
		if err != nil {
			invalid = append(invalid, pair.Key)
			continue
		}
		var check T
		if err := json.Unmarshal(single, &check); err != nil {
			invalid = append(invalid, pair.Key)
			continue
		}
		_ = json.Unmarshal(single, &out)
	}
	return out, invalid, nil
}

// UnmarshalJSON never fails: a non-object becomes an error node and members with
// an unexpected shape are dropped and listed in Error.
func (s *Schema) UnmarshalJSON(data []byte) error {
	type plain Schema
	v, invalid, err := decodeLenient[plain](data)
	if err != nil {
		*s = Schema{Type: TypeError, Error: "schema is not a JSON object"}
		return nil
	}
	*s = Schema(v)
	if len(invalid) > 0 {
		s.Error = "invalid schema field(s): " + strings.Join(invalid, ", ")
	}
	return nil
}

// UnmarshalJSON drops members with an unexpected shape. A non-object decodes as
// an empty operation.
func (o *Operation) UnmarshalJSON(data []byte) error {
	type plain Operation
	v, _, _ := decodeLenient[plain](data)
	*o = Operation(v)
	return nil
}

// UnmarshalJSON drops members with an unexpected shape.
func (p *Parameter) UnmarshalJSON(data []byte) error {
	type plain Parameter
	v, _, _ := decodeLenient[plain](data)
	*p = Parameter(v)
	return nil
}

// UnmarshalJSON drops members with an unexpected shape.
func (b *RequestBody) UnmarshalJSON(data []byte) error {
	type plain RequestBody
	v, _, _ := decodeLenient[plain](data)
	*b = RequestBody(v)
	return nil
}

// UnmarshalJSON drops members with an unexpected shape.
func (r *Response) UnmarshalJSON(data []byte) error {
	type plain Response
	v, _, _ := decodeLenient[plain](data)
	*r = Response(v)
	return nil
}

// UnmarshalJSON drops members with an unexpected shape.
func (m *MediaType) UnmarshalJSON(data []byte) error {
	type plain MediaType
	v, _, _ := decodeLenient[plain](data)
	*m = MediaType(v)
	return nil
}

// UnmarshalJSON keeps the schemas when another part of the components object is malformed.
func (c *Components) UnmarshalJSON(data []byte) error {
	type plain Components
	v, _, _ := decodeLenient[plain](data)
	*c = Components(v)
	return nil
}
