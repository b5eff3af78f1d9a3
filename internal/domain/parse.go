package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	documentKeys = []string{"openapi", "swagger", "paths", "info"}
	configKeys   = []string{"urls", "configUrl"}
)

// ParseDocument decodes an OpenAPI payload, bare or wrapped in a {"data": ...} envelope,
// and substitutes defaults for every optional part. Members with an unexpected shape
// are dropped instead of failing the document.
func ParseDocument(payload []byte) (*Document, error) {
	body, err := unwrapEnvelope(payload, documentKeys)
	if err != nil {
		return nil, err
	}
	doc, _, err := decodeLenient[Document](body)
	if err != nil {
		return nil, &ParseError{Code: CodeInvalidDocument, Message: "decode document", Err: err}
	}
	doc.normalize()
	return &doc, nil
}

// ParseConfig decodes a swagger-config payload, bare or wrapped in an envelope.
func ParseConfig(payload []byte) (*SwaggerConfig, error) {
	body, err := unwrapEnvelope(payload, configKeys)
	if err != nil {
		return nil, err
	}
	cfg := &SwaggerConfig{}
	if err := json.Unmarshal(body, cfg); err != nil {
		return nil, &ParseError{Code: CodeInvalidConfig, Message: "decode swagger-config", Err: err}
	}
	if cfg.URLs == nil {
		cfg.URLs = []ConfigURL{}
	}
	return cfg, nil
}

// unwrapEnvelope returns the "data" member of an object payload unless the payload
// already carries one of the marker keys of the target type.
func unwrapEnvelope(payload []byte, markers []string) ([]byte, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, &ParseError{Code: CodeEmptyPayload, Message: "empty payload"}
	}
	if trimmed[0] != '{' {
		return nil, &ParseError{Code: CodeInvalidDocument, Message: "payload is not a JSON object"}
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, &ParseError{Code: CodeInvalidDocument, Message: "decode payload", Err: err}
	}
	for _, k := range markers {
		if _, ok := top[k]; ok {
			return trimmed, nil
		}
	}
	data, ok := top["data"]
	if !ok || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return trimmed, nil
	}
	return data, nil
}

func (d *Document) normalize() {
	d.pathsDeclared = d.Paths != nil
	if d.Paths == nil {
		d.Paths = orderedmap.New[string, *PathItem]()
	}
	if d.Components.Schemas == nil {
		d.Components.Schemas = orderedmap.New[string, *Schema]()
	}
	for pair := d.Paths.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			pair.Value = &PathItem{}
		}
		if pair.Value.Operations == nil {
			pair.Value.Operations = orderedmap.New[string, *Operation]()
		}
		for op := pair.Value.Operations.Oldest(); op != nil; op = op.Next() {
			if op.Value == nil {
				op.Value = &Operation{}
			}
			if op.Value.OperationID == "" {
				op.Value.OperationID = syntheticOperationID(op.Key, pair.Key)
			}
		}
	}
}

// syntheticOperationID derives a stable identifier such as "get_users_id" for "/users/{id}".
func syntheticOperationID(method, path string) string {
	var b strings.Builder
	b.WriteString(method)
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}")
		if seg == "" {
			continue
		}
		b.WriteByte('_')
		b.WriteString(seg)
	}
	return b.String()
}
