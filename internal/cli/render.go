package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/schema"
)

type bodyView struct {
	Code        string            `json:"code,omitempty"`
	ContentType string            `json:"contentType,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []schema.TreeNode `json:"fields,omitempty"`
	Example     string            `json:"example,omitempty"`
}

type operationView struct {
	Method      string             `json:"method"`
	Path        string             `json:"path"`
	OperationID string             `json:"operationId"`
	Summary     string             `json:"summary,omitempty"`
	Description string             `json:"description,omitempty"`
	Deprecated  bool               `json:"deprecated,omitempty"`
	Security    string             `json:"security"`
	Rules       []string           `json:"rules,omitempty"`
	Parameters  []domain.Parameter `json:"parameters,omitempty"`
	Request     *bodyView          `json:"request,omitempty"`
	Responses   []bodyView         `json:"responses,omitempty"`
}

type entityView struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Fields      []schema.TreeNode `json:"fields"`
	Example     string            `json:"example"`
}

func newOperationView(resolver *schema.Resolver, op domain.OperationRecord) operationView {
	view := operationView{
		Method:      strings.ToUpper(op.Method),
		Path:        op.Path,
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Description: op.Description,
		Deprecated:  op.Deprecated,
		Security:    schema.SecuritySummary(&op.Operation),
		Rules:       schema.SecurityDetails(&op.Operation),
		Parameters:  op.Parameters,
	}
	if op.RequestBody != nil {
		body := newBodyView(resolver, op.RequestBody.Content)
		body.Description = op.RequestBody.Description
		view.Request = &body
	}
	if op.Responses != nil {
		for pair := op.Responses.Oldest(); pair != nil; pair = pair.Next() {
			body := bodyView{}
			if pair.Value != nil {
				body = newBodyView(resolver, pair.Value.Content)
				body.Description = pair.Value.Description
			}
			body.Code = pair.Key
			view.Responses = append(view.Responses, body)
		}
	}
	return view
}

func newBodyView(resolver *schema.Resolver, content *orderedmap.OrderedMap[string, domain.MediaType]) bodyView {
	contentType, s := domain.FirstSchema(content)
	view := bodyView{ContentType: contentType}
	if s == nil {
		return view
	}
	resolved := resolver.Resolve(s)
	view.Fields = schema.BuildDisplayTree(resolved)
	view.Example, _ = schema.ExampleJSON(resolved)
	return view
}

func newEntityView(name string, resolved *domain.Schema) entityView {
	example, _ := schema.ExampleJSON(resolved)
	return entityView{
		Name:        name,
		Description: schema.Describe(resolved),
		Fields:      schema.BuildDisplayTree(resolved),
		Example:     example,
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

func writeMenu(w io.Writer, nodes []*domain.MenuNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.Method != "" {
			fmt.Fprintf(w, "%s%-7s %s  %s\n", indent, n.Method, n.Title, n.Path)
		} else {
			fmt.Fprintf(w, "%s%s  %s\n", indent, n.Title, n.Path)
		}
		writeMenu(w, n.Children, depth+1)
	}
}

func writeOperation(w io.Writer, v operationView) {
	fmt.Fprintf(w, "%s %s\n", v.Method, v.Path)
	fmt.Fprintf(w, "Operation ID: %s\n", v.OperationID)
	if v.Deprecated {
		fmt.Fprintln(w, "Deprecated")
	}
	if v.Summary != "" {
		fmt.Fprintln(w, v.Summary)
	}
	if v.Description != "" {
		fmt.Fprintln(w, v.Description)
	}
	fmt.Fprintf(w, "\nAuthorization: %s\n", v.Security)
	for _, rule := range v.Rules {
		fmt.Fprintf(w, "  %s\n", rule)
	}

	if len(v.Parameters) > 0 {
		fmt.Fprintln(w, "\nParameters:")
		for _, p := range v.Parameters {
			required := ""
			if p.Required {
				required = " *"
			}
			fmt.Fprintf(w, "  %s%s (%s, %s) %s\n", p.Name, required, p.In, schema.TypeLabel(p.Schema), schema.Describe(p.Schema))
		}
	}

	if v.Request != nil {
		fmt.Fprintf(w, "\nRequest Body (%s):\n", v.Request.ContentType)
		writeBody(w, *v.Request)
	}
	if len(v.Responses) > 0 {
		fmt.Fprintln(w, "\nResponses:")
		for _, r := range v.Responses {
			fmt.Fprintf(w, "  %s %s\n", r.Code, r.Description)
			writeBody(w, r)
		}
	}
}

func writeBody(w io.Writer, b bodyView) {
	writeFields(w, b.Fields, 2)
	if b.Example != "" {
		fmt.Fprintln(w, indentLines(b.Example, "    "))
	}
}

func writeEntity(w io.Writer, v entityView) {
	fmt.Fprintln(w, v.Name)
	if v.Description != "" {
		fmt.Fprintln(w, v.Description)
	}
	fmt.Fprintln(w)
	writeFields(w, v.Fields, 1)
	fmt.Fprintln(w, "\nExample:")
	fmt.Fprintln(w, indentLines(v.Example, "  "))
}

func writeFields(w io.Writer, nodes []schema.TreeNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		line := fmt.Sprintf("%s%s  %s", indent, n.Title, n.Type)
		if n.Description != "" {
			line += "  " + n.Description
		}
		fmt.Fprintln(w, line)
		writeFields(w, n.Children, depth+1)
	}
}

func indentLines(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}
