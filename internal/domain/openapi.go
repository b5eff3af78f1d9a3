// Package domain provides the core models and ports of the documentation browser.
package domain

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// HTTP methods recognised inside a path item, in the order OpenAPI lists them.
var httpMethods = map[string]struct{}{
	"get": {}, "put": {}, "post": {}, "delete": {},
	"options": {}, "head": {}, "patch": {}, "trace": {},
}

// Document is a normalized OpenAPI 3.x document.
type Document struct {
	OpenAPI     string                                    `json:"openapi,omitempty"`
	Info        Info                                      `json:"info"`
	Servers     []Server                                  `json:"servers,omitempty"`
	Tags        []Tag                                     `json:"tags,omitempty"`
	Security    []map[string][]string                     `json:"security,omitempty"`
	Paths       *orderedmap.OrderedMap[string, *PathItem] `json:"paths"`
	Components  Components                                `json:"components"`
	NextDoc     *Extension                                `json:"x-nextdoc4j,omitempty"`
	Aggregation *AggregationExtension                     `json:"x-nextdoc4j-aggregation,omitempty"`

	pathsDeclared bool
}

// Info carries the document metadata.
type Info struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
}

// Server represents an API server.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Tag represents an OpenAPI tag.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Components holds reusable definitions. Only schemas and security schemes are used.
type Components struct {
	Schemas         *orderedmap.OrderedMap[string, *Schema] `json:"schemas"`
	SecuritySchemes map[string]SecurityScheme               `json:"securitySchemes,omitempty"`
}

// SecurityScheme represents a security scheme.
type SecurityScheme struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	In          string `json:"in,omitempty"`
	Scheme      string `json:"scheme,omitempty"`
}

// Extension is the x-nextdoc4j vendor extension.
type Extension struct {
	Brand    *Brand        `json:"brand,omitempty"`
	Markdown []MarkdownDoc `json:"markdown,omitempty"`
}

// Brand customizes the browser chrome.
type Brand struct {
	Title      string `json:"title,omitempty"`
	Logo       string `json:"logo,omitempty"`
	FooterText string `json:"footerText,omitempty"`
}

// MarkdownDoc is a free-form document attached to the API description.
type MarkdownDoc struct {
	Group       string `json:"group"`
	DisplayName string `json:"displayName"`
	FileName    string `json:"fileName,omitempty"`
	Content     string `json:"content,omitempty"`
}

// AggregationExtension is the x-nextdoc4j-aggregation vendor extension.
type AggregationExtension struct {
	Aggregation bool `json:"aggregation"`
}

// HasPaths reports whether the payload declared a paths object.
func (d *Document) HasPaths() bool {
	return d != nil && d.pathsDeclared
}

// IsAggregation reports whether the document switches the browser to multi-service mode.
func (d *Document) IsAggregation() bool {
	return d != nil && d.Aggregation != nil && d.Aggregation.Aggregation
}

// HasSecurity reports whether the document declares a global security requirement.
func (d *Document) HasSecurity() bool {
	return d != nil && len(d.Security) > 0
}

// LookupSchema returns a named component schema.
func (d *Document) LookupSchema(name string) (*Schema, bool) {
	if d == nil || d.Components.Schemas == nil {
		return nil, false
	}
	return d.Components.Schemas.Get(name)
}

// SchemaNames lists component schema names in document order.
func (d *Document) SchemaNames() []string {
	if d == nil || d.Components.Schemas == nil {
		return nil
	}
	names := make([]string, 0, d.Components.Schemas.Len())
	for pair := d.Components.Schemas.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// MarkdownDocs returns the attached markdown documents, if any.
func (d *Document) MarkdownDocs() []MarkdownDoc {
	if d == nil || d.NextDoc == nil {
		return nil
	}
	return d.NextDoc.Markdown
}

// Brand returns the brand extension, if any.
func (d *Document) Brand() *Brand {
	if d == nil || d.NextDoc == nil {
		return nil
	}
	return d.NextDoc.Brand
}

// PathItem maps HTTP methods to operations, preserving document order.
type PathItem struct {
	Operations *orderedmap.OrderedMap[string, *Operation]
}

// UnmarshalJSON keeps only the HTTP method keys of a path item. A non-object
// decodes as a path item without operations.
func (p *PathItem) UnmarshalJSON(data []byte) error {
	p.Operations = orderedmap.New[string, *Operation]()
	raw := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, raw); err != nil {
		return nil
	}
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		method := strings.ToLower(pair.Key)
		if _, ok := httpMethods[method]; !ok {
			continue
		}
		op := &Operation{}
		if err := json.Unmarshal(pair.Value, op); err != nil {
			continue
		}
		p.Operations.Set(method, op)
	}
	return nil
}

// MarshalJSON writes the operations as a plain path item object.
func (p *PathItem) MarshalJSON() ([]byte, error) {
	if p == nil || p.Operations == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.Operations)
}

// Operation represents an HTTP operation on a path.
type Operation struct {
	Tags        []string                                  `json:"tags,omitempty"`
	Summary     string                                    `json:"summary,omitempty"`
	Description string                                    `json:"description,omitempty"`
	OperationID string                                    `json:"operationId"`
	Parameters  []Parameter                               `json:"parameters,omitempty"`
	RequestBody *RequestBody                              `json:"requestBody,omitempty"`
	Responses   *orderedmap.OrderedMap[string, *Response] `json:"responses,omitempty"`
	Deprecated  bool                                      `json:"deprecated,omitempty"`
	Security    []map[string][]string                     `json:"security,omitempty"`
	XSecurity   *SecurityExtension                        `json:"x-nextdoc4j-security,omitempty"`
}

// Parameter represents a request parameter.
type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"` // query, path, header, cookie
	Description string  `json:"description,omitempty"`
	Required    bool    `json:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty"`
}

// RequestBody represents a request body.
type RequestBody struct {
	Description string                                    `json:"description,omitempty"`
	Required    bool                                      `json:"required,omitempty"`
	Content     *orderedmap.OrderedMap[string, MediaType] `json:"content,omitempty"`
}

// MediaType represents one content type of a body.
type MediaType struct {
	Schema  *Schema         `json:"schema,omitempty"`
	Example json.RawMessage `json:"example,omitempty"`
}

// Response represents an API response.
type Response struct {
	Description string                                    `json:"description,omitempty"`
	Content     *orderedmap.OrderedMap[string, MediaType] `json:"content,omitempty"`
}

// SecurityExtension is the x-nextdoc4j-security operation extension.
type SecurityExtension struct {
	Permissions []AuthInfo `json:"permissions,omitempty"`
	Roles       []AuthInfo `json:"roles,omitempty"`
	Ignore      bool       `json:"ignore,omitempty"`
}

// AuthInfo is one role or permission assertion. Mode is AND or OR.
type AuthInfo struct {
	Values   []string `json:"values,omitempty"`
	Mode     string   `json:"mode,omitempty"`
	Type     string   `json:"type,omitempty"`
	OrValues []string `json:"orValues,omitempty"`
	OrType   string   `json:"orType,omitempty"`
}

// FirstSchema returns the schema of the first media type that has one.
func FirstSchema(content *orderedmap.OrderedMap[string, MediaType]) (string, *Schema) {
	if content == nil {
		return "", nil
	}
	for pair := content.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Schema != nil {
			return pair.Key, pair.Value.Schema
		}
	}
	return "", nil
}
