package schema

import (
	"fmt"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// TreeNode is one row of a schema display tree.
type TreeNode struct {
	Key         string     `json:"key"`
	Title       string     `json:"title"`
	Type        string     `json:"type"`
	Required    bool       `json:"required,omitempty"`
	Description string     `json:"description,omitempty"`
	Children    []TreeNode `json:"children,omitempty"`
}

// BuildDisplayTree converts a resolved object or oneOf schema into display rows.
func BuildDisplayTree(schema *domain.Schema) []TreeNode {
	return buildTree(schema, "")
}

func buildTree(schema *domain.Schema, prefix string) []TreeNode {
	if schema == nil {
		return nil
	}
	rows := errorRows(prefix, schema)

	if len(schema.OneOf) > 0 {
		nodes := append(make([]TreeNode, 0, len(rows)+len(schema.OneOf)), rows...)
		for i, alt := range schema.OneOf {
			key := joinKey(prefix, fmt.Sprintf("oneOf-%d", i))
			title := fmt.Sprintf("Option %d", i+1)
			if alt != nil && alt.Title != "" {
				title = alt.Title
			}
			nodes = append(nodes, TreeNode{
				Key:         key,
				Title:       title,
				Type:        TypeLabel(alt),
				Description: Describe(alt),
				Children:    buildTree(alt, key),
			})
		}
		return nodes
	}

	if schema.Type == domain.TypeArray && schema.Items.IsObject() {
		return append(rows, buildTree(schema.Items, prefix)...)
	}
	if !schema.IsObject() || schema.Properties == nil {
		return rows
	}

	nodes := append(make([]TreeNode, 0, len(rows)+schema.Properties.Len()), rows...)
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		name, prop := pair.Key, pair.Value
		key := joinKey(prefix, name)
		required := schema.IsRequired(name)
		node := TreeNode{
			Key:         key,
			Title:       name,
			Type:        TypeLabel(prop),
			Required:    required,
			Description: Describe(prop),
		}
		if required {
			node.Title = name + " *"
		}
		switch {
		case prop == nil:
		case prop.IsObject(), len(prop.OneOf) > 0:
			node.Children = buildTree(prop, key)
		case prop.Type == domain.TypeArray && prop.Items.IsObject():
			node.Children = append(errorRows(key, prop), buildTree(prop.Items, key)...)
		default:
			node.Children = errorRows(key, prop)
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// errorRows returns the row reporting a decode or resolution problem of s, if any.
func errorRows(prefix string, s *domain.Schema) []TreeNode {
	if s == nil || s.Error == "" {
		return nil
	}
	return []TreeNode{{
		Key:         joinKey(prefix, "error"),
		Title:       "error",
		Type:        string(domain.TypeError),
		Description: s.Error,
	}}
}

// TypeLabel renders the display type of a node, array<itemType> for arrays.
func TypeLabel(s *domain.Schema) string {
	switch {
	case s == nil:
		return "any"
	case s.Type == domain.TypeArray:
		item := "any"
		if s.Items != nil {
			if label := TypeLabel(s.Items); label != "any" {
				item = label
			}
		}
		return "array<" + item + ">"
	case s.Type != "":
		return string(s.Type)
	case s.Properties != nil:
		return string(domain.TypeObject)
	case len(s.OneOf) > 0:
		return "oneOf"
	default:
		return "any"
	}
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
