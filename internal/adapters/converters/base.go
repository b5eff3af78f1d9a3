// Package converters renders the documentation manual to export formats.
package converters

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/schema"
)

// New returns the converter for a format name. "adf" is accepted as an alias of "confluence".
func New(format string) (domain.Converter, error) {
	switch strings.ToLower(format) {
	case pdfFormat:
		return NewPDFConverter(), nil
	case docxFormat:
		return NewDocxConverter(), nil
	case adfFormat, "adf":
		return NewADFConverter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Formats lists the supported format names.
func Formats() []string {
	return []string{pdfFormat, docxFormat, adfFormat}
}

// formatMethod returns a styled method string.
func formatMethod(method string) string {
	return strings.ToUpper(method)
}

func endpointTitle(ep domain.ManualEndpoint) string {
	return fmt.Sprintf("%s %s", formatMethod(ep.Method), ep.Path)
}

func serverLine(server domain.Server) string {
	if server.Description == "" {
		return server.URL
	}
	return fmt.Sprintf("%s - %s", server.URL, server.Description)
}

// parameterLine renders a parameter as "name (in, type): description".
func parameterLine(p domain.Parameter) string {
	line := fmt.Sprintf("%s (%s, %s)", p.Name, p.In, typeName(p.Schema))
	if p.Required {
		line += " required"
	}
	if desc := stripHTML(parameterDescription(p)); desc != "" {
		line += ": " + desc
	}
	return line
}

// typeName names a schema by its reference when it has one.
func typeName(s *domain.Schema) string {
	if s != nil && s.Ref != "" {
		return s.RefName()
	}
	return schema.TypeLabel(s)
}

func parameterDescription(p domain.Parameter) string {
	if p.Description != "" {
		return p.Description
	}
	return schema.Describe(p.Schema)
}

func sortedSchemeNames(m *domain.Manual) []string {
	return slices.Sorted(maps.Keys(m.SecuritySchemes))
}

// schemeLine renders a security scheme such as "apiKey in header Authorization".
func schemeLine(s domain.SecurityScheme) string {
	parts := []string{s.Type}
	if s.Scheme != "" {
		parts = append(parts, s.Scheme)
	}
	if s.In != "" {
		parts = append(parts, "in "+s.In)
	}
	if s.Name != "" {
		parts = append(parts, s.Name)
	}
	line := strings.Join(parts, " ")
	if s.Description != "" {
		line += " - " + stripHTML(s.Description)
	}
	return line
}

func responseLine(r domain.ManualResponse) string {
	if r.Description == "" {
		return r.Code
	}
	return fmt.Sprintf("%s: %s", r.Code, stripHTML(r.Description))
}

func stripHTML(s string) string {
	result := s
	for {
		start := strings.Index(result, "<")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], ">")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+1:]
	}
	result = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
		"\n\n", "\n",
	).Replace(result)
	return strings.TrimSpace(result)
}
