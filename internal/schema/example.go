package schema

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// GenerateExample synthesizes a representative value for a resolved schema.
// Objects are returned as ordered maps so that property order survives JSON encoding.
func GenerateExample(s *domain.Schema) any {
	return generate(s, 0)
}

func generate(s *domain.Schema, depth int) any {
	if s == nil || depth > MaxDepth {
		return nil
	}
	if len(s.Example) > 0 {
		var v any
		if err := json.Unmarshal(s.Example, &v); err == nil {
			return v
		}
	}
	if len(s.OneOf) > 0 {
		return generate(s.OneOf[0], depth+1)
	}

	switch {
	case s.IsObject():
		obj := orderedmap.New[string, any]()
		if s.Properties != nil {
			for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
				obj.Set(pair.Key, generate(pair.Value, depth+1))
			}
		}
		return obj
	case s.Type == domain.TypeArray:
		if s.Items == nil {
			return []any{}
		}
		return []any{generate(s.Items, depth+1)}
	case s.Type == domain.TypeString:
		if len(s.Enum) > 0 {
			return s.Enum[0]
		}
		return "string"
	case s.Type == domain.TypeNumber, s.Type == domain.TypeInteger:
		if len(s.Enum) > 0 {
			return s.Enum[0]
		}
		return 0
	case s.Type == domain.TypeBoolean:
		return false
	default:
		return nil
	}
}

// ExampleJSON renders the generated example as indented JSON.
func ExampleJSON(s *domain.Schema) (string, error) {
	out, err := json.MarshalIndent(GenerateExample(s), "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
