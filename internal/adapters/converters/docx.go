package converters

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

const docxFormat = "docx"

// DocxConverter renders the manual as a Word (DOCX) document.
type DocxConverter struct{}

// NewDocxConverter creates a new DOCX converter.
func NewDocxConverter() *DocxConverter {
	return &DocxConverter{}
}

// Format returns the output format name.
func (c *DocxConverter) Format() string {
	return docxFormat
}

// Convert writes the manual as DOCX.
func (c *DocxConverter) Convert(manual *domain.Manual, output io.Writer) error {
	document, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	c.addTitle(document, manual)
	c.addServers(document, manual.Servers)
	c.addSecuritySchemes(document, manual)
	for _, group := range manual.Groups {
		c.addGroup(document, group)
	}
	c.addEntities(document, manual.Entities)

	if err := document.Write(output); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (c *DocxConverter) addTitle(document *docx.RootDoc, manual *domain.Manual) {
	_, _ = document.AddHeading(manual.Title, 0)
	if manual.Version != "" {
		document.AddParagraph(fmt.Sprintf("Version: %s", manual.Version))
	}
	if manual.Description != "" {
		document.AddParagraph(stripHTML(manual.Description))
	}
	document.AddEmptyParagraph()
}

func (c *DocxConverter) addServers(document *docx.RootDoc, servers []domain.Server) {
	if len(servers) == 0 {
		return
	}

	_, _ = document.AddHeading("Servers", 1)
	for _, server := range servers {
		document.AddParagraph("• " + serverLine(server))
	}
	document.AddEmptyParagraph()
}

func (c *DocxConverter) addSecuritySchemes(document *docx.RootDoc, manual *domain.Manual) {
	names := sortedSchemeNames(manual)
	if len(names) == 0 {
		return
	}

	_, _ = document.AddHeading("Authorization", 1)
	for _, name := range names {
		scheme := manual.SecuritySchemes[name]
		document.AddParagraph(fmt.Sprintf("• %s: %s", name, schemeLine(scheme)))
	}
	document.AddEmptyParagraph()
}

func (c *DocxConverter) addGroup(document *docx.RootDoc, group domain.ManualGroup) {
	_, _ = document.AddHeading(group.Title, 1)

	for _, tag := range group.Tags {
		_, _ = document.AddHeading(tag.Name, 2)
		for _, ep := range tag.Endpoints {
			c.addEndpoint(document, ep)
		}
	}
}

func (c *DocxConverter) addEndpoint(document *docx.RootDoc, ep domain.ManualEndpoint) {
	_, _ = document.AddHeading(endpointTitle(ep), 3)

	if ep.Summary != "" {
		document.AddParagraph(stripHTML(ep.Summary))
	}
	if ep.Description != "" {
		document.AddParagraph(stripHTML(ep.Description))
	}
	if ep.Deprecated {
		document.AddParagraph("Deprecated")
	}
	if len(ep.Security) > 0 {
		document.AddParagraph("Requires " + strings.Join(ep.Security, "; "))
	}

	if len(ep.Parameters) > 0 {
		_, _ = document.AddHeading("Parameters", 4)
		for _, param := range ep.Parameters {
			document.AddParagraph("• " + parameterLine(param))
		}
	}

	if ep.RequestExample != "" {
		_, _ = document.AddHeading("Request Body", 4)
		document.AddParagraph(ep.RequestContentType)
		addCodeBlock(document, ep.RequestExample)
	}

	if len(ep.Responses) > 0 {
		_, _ = document.AddHeading("Responses", 4)
		for _, resp := range ep.Responses {
			document.AddParagraph("• " + responseLine(resp))
			if resp.Example != "" {
				addCodeBlock(document, resp.Example)
			}
		}
	}

	document.AddEmptyParagraph()
}

func (c *DocxConverter) addEntities(document *docx.RootDoc, entities []domain.ManualEntity) {
	if len(entities) == 0 {
		return
	}

	_, _ = document.AddHeading("Entities", 1)
	for _, entity := range entities {
		_, _ = document.AddHeading(entity.Name, 2)
		if entity.Description != "" {
			document.AddParagraph(stripHTML(entity.Description))
		}
		addCodeBlock(document, entity.Example)
	}
}

// addCodeBlock writes one paragraph per line so indentation survives.
func addCodeBlock(document *docx.RootDoc, code string) {
	for _, line := range strings.Split(code, "\n") {
		document.AddParagraph(line)
	}
}
