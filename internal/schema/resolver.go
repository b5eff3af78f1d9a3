// Package schema expands $ref-based schema graphs into bounded trees and derives
// display trees and example payloads from them.
package schema

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// MaxDepth bounds the nesting of a single resolution.
const MaxDepth = 64

// Registry looks up named component schemas.
type Registry interface {
	LookupSchema(name string) (*domain.Schema, bool)
}

// Resolver expands schema references against a registry.
type Resolver struct {
	registry Registry
}

// NewResolver creates a resolver for the given registry.
func NewResolver(registry Registry) *Resolver {
	return &Resolver{registry: registry}
}

// visiting is the set of reference names on the current resolution path.
// It is never mutated: with returns a copy, so sibling branches stay independent.
type visiting map[string]struct{}

func (v visiting) has(name string) bool {
	_, ok := v[name]
	return ok
}

func (v visiting) with(name string) visiting {
	next := make(visiting, len(v)+1)
	for k := range v {
		next[k] = struct{}{}
	}
	next[name] = struct{}{}
	return next
}

// Resolve returns a fully expanded copy of node. The input is not modified.
// Reference cycles are truncated to {type: "ref"} stubs, unknown references become
// {type: "unknown"} and any failure becomes an {type: "error"} node.
func (r *Resolver) Resolve(node *domain.Schema) *domain.Schema {
	return r.resolve(node, visiting{}, 0)
}

// ResolveName resolves a component schema by name.
func (r *Resolver) ResolveName(name string) *domain.Schema {
	return r.Resolve(&domain.Schema{Ref: "#/components/schemas/" + name})
}

func (r *Resolver) resolve(node *domain.Schema, seen visiting, depth int) (out *domain.Schema) {
	defer func() {
		if rec := recover(); rec != nil {
			out = errorNode(fmt.Sprint(rec))
		}
	}()

	if node == nil {
		return nil
	}
	if depth > MaxDepth {
		return errorNode(fmt.Sprintf("schema nesting exceeds %d levels", MaxDepth))
	}

	if name := node.RefName(); name != "" {
		return r.resolveRef(name, seen, depth)
	}

	resolved := *node
	if node.IsObject() {
		resolved.Properties = r.resolveProperties(node.Properties, seen, depth)
		if resolved.Type == "" {
			resolved.Type = domain.TypeObject
		}
		if resolved.Required == nil {
			resolved.Required = []string{}
		}
	}
	if node.Items != nil {
		resolved.Items = r.resolve(node.Items, seen, depth+1)
	}
	resolved.OneOf = r.resolveAll(node.OneOf, seen, depth)
	resolved.AnyOf = r.resolveAll(node.AnyOf, seen, depth)
	if len(node.AllOf) > 0 {
		mergeAllOf(&resolved, r.resolveAll(node.AllOf, seen, depth))
	}
	return &resolved
}

func (r *Resolver) resolveRef(name string, seen visiting, depth int) *domain.Schema {
	if seen.has(name) {
		return &domain.Schema{Type: domain.TypeRef, Title: name}
	}
	if r.registry == nil {
		return &domain.Schema{Type: domain.TypeUnknown, Title: name}
	}
	target, ok := r.registry.LookupSchema(name)
	if !ok || target == nil {
		return &domain.Schema{Type: domain.TypeUnknown, Title: name}
	}
	resolved := r.resolve(target, seen.with(name), depth+1)
	if resolved.Type == domain.TypeError {
		return resolved
	}
	annotated := *resolved
	annotated.Title = name
	return &annotated
}

func (r *Resolver) resolveProperties(props *orderedmap.OrderedMap[string, *domain.Schema], seen visiting, depth int) *orderedmap.OrderedMap[string, *domain.Schema] {
	out := orderedmap.New[string, *domain.Schema]()
	if props == nil {
		return out
	}
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, r.resolve(pair.Value, seen, depth+1))
	}
	return out
}

func (r *Resolver) resolveAll(nodes []*domain.Schema, seen visiting, depth int) []*domain.Schema {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*domain.Schema, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, r.resolve(n, seen, depth+1))
	}
	return out
}

// mergeAllOf folds resolved allOf members into target. Later members win on conflicting properties.
func mergeAllOf(target *domain.Schema, members []*domain.Schema) {
	target.AllOf = nil
	target.Required = append([]string(nil), target.Required...)
	for _, m := range members {
		if m == nil {
			continue
		}
		if m.Type == domain.TypeError {
			target.Error = m.Error
			continue
		}
		if m.Error != "" && target.Error == "" {
			target.Error = m.Error
		}
		if m.Properties != nil && m.Properties.Len() > 0 {
			if target.Properties == nil {
				target.Properties = orderedmap.New[string, *domain.Schema]()
			}
			for pair := m.Properties.Oldest(); pair != nil; pair = pair.Next() {
				target.Properties.Set(pair.Key, pair.Value)
			}
		}
		for _, req := range m.Required {
			if !target.IsRequired(req) {
				target.Required = append(target.Required, req)
			}
		}
		if target.Type == "" && m.Type != domain.TypeRef && m.Type != domain.TypeUnknown {
			target.Type = m.Type
		}
		if target.Description == "" {
			target.Description = m.Description
		}
	}
	if target.Properties != nil && target.Type == "" {
		target.Type = domain.TypeObject
	}
	if target.IsObject() && target.Required == nil {
		target.Required = []string{}
	}
}

func errorNode(msg string) *domain.Schema {
	return &domain.Schema{Type: domain.TypeError, Error: msg}
}
