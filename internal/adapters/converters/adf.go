package converters

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

const adfFormat = "confluence"

// ADFConverter renders the manual as Atlassian Document Format (ADF) for Confluence.
type ADFConverter struct{}

// NewADFConverter creates a new ADF converter.
func NewADFConverter() *ADFConverter {
	return &ADFConverter{}
}

// Format returns the output format name.
func (c *ADFConverter) Format() string {
	return adfFormat
}

// ADF node types.
type adfDocument struct {
	Version int       `json:"version"`
	Type    string    `json:"type"`
	Content []adfNode `json:"content"`
}

type adfNode struct {
	Type    string    `json:"type"`
	Attrs   *adfAttrs `json:"attrs,omitempty"`
	Content []adfNode `json:"content,omitempty"`
	Text    string    `json:"text,omitempty"`
	Marks   []adfMark `json:"marks,omitempty"`
}

type adfAttrs struct {
	Level    int    `json:"level,omitempty"`
	Language string `json:"language,omitempty"`
}

type adfMark struct {
	Type string `json:"type"`
}

// Convert writes the manual as ADF JSON.
func (c *ADFConverter) Convert(manual *domain.Manual, output io.Writer) error {
	adf := &adfDocument{
		Version: 1,
		Type:    "doc",
		Content: []adfNode{},
	}

	adf.Content = append(adf.Content, c.heading(manual.Title, 1))
	if manual.Version != "" {
		adf.Content = append(adf.Content, c.paragraph(fmt.Sprintf("Version: %s", manual.Version)))
	}
	if manual.Description != "" {
		adf.Content = append(adf.Content, c.paragraph(stripHTML(manual.Description)))
	}

	if len(manual.Servers) > 0 {
		lines := make([]string, 0, len(manual.Servers))
		for _, server := range manual.Servers {
			lines = append(lines, serverLine(server))
		}
		adf.Content = append(adf.Content, c.heading("Servers", 2), c.bulletList(lines))
	}

	if names := sortedSchemeNames(manual); len(names) > 0 {
		lines := make([]string, 0, len(names))
		for _, name := range names {
			lines = append(lines, fmt.Sprintf("%s: %s", name, schemeLine(manual.SecuritySchemes[name])))
		}
		adf.Content = append(adf.Content, c.heading("Authorization", 2), c.bulletList(lines))
	}

	for _, group := range manual.Groups {
		adf.Content = append(adf.Content, c.groupNodes(group)...)
	}

	if len(manual.Entities) > 0 {
		adf.Content = append(adf.Content, c.heading("Entities", 2))
		for _, entity := range manual.Entities {
			adf.Content = append(adf.Content, c.entityNodes(entity)...)
		}
	}

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(adf); err != nil {
		return fmt.Errorf("failed to encode ADF: %w", err)
	}
	return nil
}

func (c *ADFConverter) heading(text string, level int) adfNode {
	return adfNode{
		Type:    "heading",
		Attrs:   &adfAttrs{Level: level},
		Content: []adfNode{{Type: "text", Text: text}},
	}
}

func (c *ADFConverter) paragraph(text string) adfNode {
	return adfNode{
		Type:    "paragraph",
		Content: []adfNode{{Type: "text", Text: text}},
	}
}

func (c *ADFConverter) markedText(text, mark string) adfNode {
	return adfNode{Type: "text", Text: text, Marks: []adfMark{{Type: mark}}}
}

func (c *ADFConverter) codeBlock(code string) adfNode {
	return adfNode{
		Type:    "codeBlock",
		Attrs:   &adfAttrs{Language: "json"},
		Content: []adfNode{{Type: "text", Text: code}},
	}
}

func (c *ADFConverter) bulletList(lines []string) adfNode {
	items := make([]adfNode, 0, len(lines))
	for _, line := range lines {
		items = append(items, adfNode{Type: "listItem", Content: []adfNode{c.paragraph(line)}})
	}
	return adfNode{Type: "bulletList", Content: items}
}

func (c *ADFConverter) groupNodes(group domain.ManualGroup) []adfNode {
	nodes := []adfNode{c.heading(group.Title, 2)}
	for _, tag := range group.Tags {
		nodes = append(nodes, c.heading(tag.Name, 3))
		for _, ep := range tag.Endpoints {
			nodes = append(nodes, c.endpointNodes(ep)...)
		}
	}
	return nodes
}

func (c *ADFConverter) endpointNodes(ep domain.ManualEndpoint) []adfNode {
	nodes := []adfNode{{
		Type:  "heading",
		Attrs: &adfAttrs{Level: 4},
		Content: []adfNode{
			c.markedText(formatMethod(ep.Method), "code"),
			{Type: "text", Text: " " + ep.Path},
		},
	}}

	if ep.Summary != "" {
		nodes = append(nodes, adfNode{Type: "paragraph", Content: []adfNode{c.markedText(stripHTML(ep.Summary), "strong")}})
	}
	if ep.Description != "" {
		nodes = append(nodes, c.paragraph(stripHTML(ep.Description)))
	}
	if ep.Deprecated {
		nodes = append(nodes, adfNode{Type: "paragraph", Content: []adfNode{c.markedText("Deprecated", "strike")}})
	}
	if len(ep.Security) > 0 {
		nodes = append(nodes, c.heading("Authorization", 5), c.bulletList(ep.Security))
	}

	if len(ep.Parameters) > 0 {
		lines := make([]string, 0, len(ep.Parameters))
		for _, param := range ep.Parameters {
			lines = append(lines, parameterLine(param))
		}
		nodes = append(nodes, c.heading("Parameters", 5), c.bulletList(lines))
	}

	if ep.RequestExample != "" {
		nodes = append(nodes,
			c.heading("Request Body", 5),
			c.paragraph(ep.RequestContentType),
			c.codeBlock(ep.RequestExample),
		)
	}

	if len(ep.Responses) > 0 {
		nodes = append(nodes, c.heading("Responses", 5))
		for _, resp := range ep.Responses {
			nodes = append(nodes, adfNode{
				Type: "paragraph",
				Content: []adfNode{
					c.markedText(resp.Code, "code"),
					{Type: "text", Text: " " + stripHTML(resp.Description)},
				},
			})
			if resp.Example != "" {
				nodes = append(nodes, c.codeBlock(resp.Example))
			}
		}
	}

	nodes = append(nodes, adfNode{Type: "rule"})
	return nodes
}

func (c *ADFConverter) entityNodes(entity domain.ManualEntity) []adfNode {
	nodes := []adfNode{c.heading(entity.Name, 3)}
	if entity.Description != "" {
		nodes = append(nodes, c.paragraph(stripHTML(entity.Description)))
	}
	if entity.Example != "" {
		nodes = append(nodes, c.codeBlock(entity.Example))
	}
	return nodes
}
