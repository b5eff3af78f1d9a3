package domain

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Schema is a JSON schema node. The variant is implied by the populated fields:
// Ref for references, Properties for objects, Items for arrays, AllOf/OneOf/AnyOf
// for composites, and Type alone for primitives.
type Schema struct {
	Ref         string                                  `json:"$ref,omitempty"`
	Type        SchemaType                              `json:"type,omitempty"`
	Format      string                                  `json:"format,omitempty"`
	Title       string                                  `json:"title,omitempty"`
	Description string                                  `json:"description,omitempty"`
	Enum        []any                                   `json:"enum,omitempty"`
	Example     json.RawMessage                         `json:"example,omitempty"`
	Properties  *orderedmap.OrderedMap[string, *Schema] `json:"properties,omitempty"`
	Required    []string                                `json:"required,omitempty"`
	Items       *Schema                                 `json:"items,omitempty"`
	AllOf       []*Schema                               `json:"allOf,omitempty"`
	OneOf       []*Schema                               `json:"oneOf,omitempty"`
	AnyOf       []*Schema                               `json:"anyOf,omitempty"`
	XEnum       *EnumExtension                          `json:"x-nextdoc4j-enum,omitempty"`

	// Error is set on nodes produced by a failed resolution.
	Error string `json:"error,omitempty"`
}

// EnumExtension is the x-nextdoc4j-enum schema extension.
type EnumExtension struct {
	Items []EnumItem `json:"items"`
}

// EnumItem is one documented enum value.
type EnumItem struct {
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
}

// SchemaType accepts both the 3.0 string form and the 3.1 array form of "type".
type SchemaType string

// Schema types used by the resolver.
const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
	TypeRef     SchemaType = "ref"
	TypeUnknown SchemaType = "unknown"
	TypeError   SchemaType = "error"
)

// UnmarshalJSON takes the first non-null type of an array form.
func (t *SchemaType) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = SchemaType(single)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = ""
	for _, v := range many {
		if v != "null" {
			*t = SchemaType(v)
			return nil
		}
	}
	return nil
}

// RefName returns the last segment of the reference, or "" when the node is not a reference.
func (s *Schema) RefName() string {
	if s == nil || s.Ref == "" {
		return ""
	}
	return RefName(s.Ref)
}

// IsObject reports whether the node has object shape.
func (s *Schema) IsObject() bool {
	return s != nil && (s.Type == TypeObject || s.Properties != nil)
}

// IsRequired reports whether the named property is required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// RefName extracts the schema name from a $ref pointer.
func RefName(ref string) string {
	for i := len(ref) - 1; i >= 0; i-- {
		if ref[i] == '/' {
			return ref[i+1:]
		}
	}
	return ref
}
