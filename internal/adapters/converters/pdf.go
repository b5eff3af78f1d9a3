package converters

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

const (
	pdfFormat      = "pdf"
	pdfPageWidth   = 190.0
	pdfMarginLeft  = 10.0
	pdfMarginTop   = 10.0
	pdfMarginRight = 10.0
	pdfLineHeight  = 5.0
)

var methodColors = map[string][3]int{
	"GET":     {97, 175, 254},
	"POST":    {73, 204, 144},
	"PUT":     {252, 161, 48},
	"DELETE":  {249, 62, 62},
	"PATCH":   {80, 227, 194},
	"HEAD":    {144, 97, 249},
	"OPTIONS": {128, 128, 128},
}

// PDFConverter renders the manual as a PDF with a linked table of contents.
type PDFConverter struct {
	pdf         *gofpdf.Fpdf
	tocItems    []tocItem
	entityLinks map[string]int
}

type tocItem struct {
	title  string
	level  int
	linkID int
}

// NewPDFConverter creates a new PDF converter.
func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

// Format returns the output format name.
func (c *PDFConverter) Format() string {
	return pdfFormat
}

// Convert writes the manual as PDF.
func (c *PDFConverter) Convert(manual *domain.Manual, output io.Writer) error {
	c.pdf = gofpdf.New("P", "mm", "A4", "")
	c.pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginRight)
	c.pdf.SetDrawColor(180, 180, 180)
	c.tocItems = nil
	c.entityLinks = make(map[string]int, len(manual.Entities))

	c.collectTOC(manual)
	c.addTitlePage(manual)
	c.addTableOfContents()
	c.addContent(manual)

	return c.pdf.Output(output)
}

// collectTOC reserves a link for every section in the order addContent visits them.
func (c *PDFConverter) collectTOC(manual *domain.Manual) {
	c.tocItems = append(c.tocItems, tocItem{title: "Overview", level: 1, linkID: c.pdf.AddLink()})

	for _, group := range manual.Groups {
		c.tocItems = append(c.tocItems, tocItem{title: group.Title, level: 1, linkID: c.pdf.AddLink()})
		for _, tag := range group.Tags {
			c.tocItems = append(c.tocItems, tocItem{title: tag.Name, level: 2, linkID: c.pdf.AddLink()})
			for _, ep := range tag.Endpoints {
				c.tocItems = append(c.tocItems, tocItem{title: endpointTitle(ep), level: 3, linkID: c.pdf.AddLink()})
			}
		}
	}

	if len(manual.Entities) > 0 {
		c.tocItems = append(c.tocItems, tocItem{title: "Entities", level: 1, linkID: c.pdf.AddLink()})
		for _, entity := range manual.Entities {
			link := c.pdf.AddLink()
			c.entityLinks[entity.Name] = link
			c.tocItems = append(c.tocItems, tocItem{title: entity.Name, level: 2, linkID: link})
		}
	}
}

func (c *PDFConverter) addTitlePage(manual *domain.Manual) {
	c.pdf.AddPage()

	c.pdf.SetFont("Arial", "B", 28)
	c.pdf.Ln(40)
	c.pdf.CellFormat(pdfPageWidth, 15, manual.Title, "", 1, "C", false, 0, "")
	c.pdf.Ln(5)

	if manual.Version != "" {
		c.pdf.SetFont("Arial", "", 14)
		c.pdf.SetTextColor(100, 100, 100)
		c.pdf.CellFormat(pdfPageWidth, 8, fmt.Sprintf("Version %s", manual.Version), "", 1, "C", false, 0, "")
		c.pdf.SetTextColor(0, 0, 0)
	}
	c.pdf.Ln(20)

	if manual.Description != "" {
		c.pdf.SetFont("Arial", "", 11)
		c.pdf.MultiCell(pdfPageWidth, 6, stripHTML(manual.Description), "", "C", false)
	}
}

func (c *PDFConverter) addTableOfContents() {
	c.pdf.AddPage()

	c.pdf.SetFont("Arial", "B", 20)
	c.pdf.CellFormat(pdfPageWidth, 10, "Table of Contents", "", 1, "", false, 0, "")
	c.pdf.Ln(8)

	for _, item := range c.tocItems {
		indent := float64(item.level-1) * 8

		switch item.level {
		case 1:
			c.pdf.SetFont("Arial", "B", 12)
		case 2:
			c.pdf.SetFont("Arial", "B", 10)
		default:
			c.pdf.SetFont("Arial", "", 9)
		}

		c.pdf.SetX(pdfMarginLeft + indent)
		title := item.title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		c.pdf.CellFormat(pdfPageWidth-indent, pdfLineHeight, title, "", 1, "", false, item.linkID, "")
	}
}

func (c *PDFConverter) addContent(manual *domain.Manual) {
	toc := 0
	next := func() {
		if toc < len(c.tocItems) {
			c.pdf.SetLink(c.tocItems[toc].linkID, -1, -1)
		}
		toc++
	}

	c.pdf.AddPage()
	next()
	c.addSectionHeader("Overview")
	c.addServers(manual.Servers)
	c.addSecuritySchemes(manual)

	for _, group := range manual.Groups {
		c.pdf.AddPage()
		next()
		c.addSectionHeader(group.Title)

		for _, tag := range group.Tags {
			c.checkPageBreak(40)
			next()

			c.pdf.SetFont("Arial", "B", 14)
			c.pdf.SetFillColor(240, 240, 240)
			c.pdf.CellFormat(pdfPageWidth, 8, tag.Name, "", 1, "", true, 0, "")
			c.pdf.Ln(4)

			c.addEndpointsSummary(tag.Endpoints, toc)
			c.pdf.Ln(6)

			for _, ep := range tag.Endpoints {
				c.checkPageBreak(50)
				next()
				c.addEndpoint(ep)
			}
		}
	}

	if len(manual.Entities) > 0 {
		c.pdf.AddPage()
		next()
		c.addSectionHeader("Entities")
		for _, entity := range manual.Entities {
			c.checkPageBreak(30)
			next()
			c.addEntity(entity)
		}
	}
}

func (c *PDFConverter) addSectionHeader(title string) {
	c.pdf.SetFont("Arial", "B", 18)
	c.pdf.CellFormat(pdfPageWidth, 10, title, "", 1, "", false, 0, "")
	c.pdf.Ln(4)
}

func (c *PDFConverter) addServers(servers []domain.Server) {
	if len(servers) == 0 {
		return
	}
	c.addSubHeader("Servers")
	for _, server := range servers {
		c.pdf.SetFont("Arial", "B", 10)
		c.pdf.SetTextColor(0, 102, 204)
		c.pdf.CellFormat(pdfPageWidth, 6, server.URL, "", 1, "", false, 0, "")
		c.pdf.SetTextColor(0, 0, 0)

		if server.Description != "" {
			c.pdf.SetFont("Arial", "", 9)
			c.pdf.SetTextColor(100, 100, 100)
			c.pdf.MultiCell(pdfPageWidth, 4, server.Description, "", "", false)
			c.pdf.SetTextColor(0, 0, 0)
		}
		c.pdf.Ln(2)
	}
	c.pdf.Ln(4)
}

func (c *PDFConverter) addSecuritySchemes(manual *domain.Manual) {
	names := sortedSchemeNames(manual)
	if len(names) == 0 {
		return
	}
	c.addSubHeader("Authorization")
	c.addTableHeader([]float64{50, 140}, []string{"Scheme", "Definition"})
	c.pdf.SetFont("Arial", "", 8)
	for _, name := range names {
		c.addTableRow([]float64{50, 140}, []string{name, schemeLine(manual.SecuritySchemes[name])}, nil, nil)
	}
	c.pdf.Ln(4)
}

func (c *PDFConverter) addEndpoint(ep domain.ManualEndpoint) {
	method := formatMethod(ep.Method)
	color, ok := methodColors[method]
	if !ok {
		color = [3]int{128, 128, 128}
	}

	c.pdf.SetFont("Arial", "B", 11)
	c.pdf.SetFillColor(color[0], color[1], color[2])
	c.pdf.SetTextColor(255, 255, 255)
	methodWidth := float64(len(method)*3) + 8
	c.pdf.CellFormat(methodWidth, 7, method, "", 0, "C", true, 0, "")

	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.CellFormat(pdfPageWidth-methodWidth, 7, " "+ep.Path, "", 1, "", false, 0, "")
	c.pdf.Ln(2)

	c.pdf.SetFont("Arial", "", 8)
	c.pdf.SetTextColor(128, 128, 128)
	c.pdf.CellFormat(pdfPageWidth, 4, fmt.Sprintf("Operation ID: %s", ep.OperationID), "", 1, "", false, 0, "")
	if ep.Deprecated {
		c.pdf.CellFormat(pdfPageWidth, 4, "Deprecated", "", 1, "", false, 0, "")
	}
	c.pdf.SetTextColor(0, 0, 0)

	if ep.Summary != "" {
		c.pdf.SetFont("Arial", "B", 10)
		c.pdf.MultiCell(pdfPageWidth, 5, stripHTML(ep.Summary), "", "", false)
	}
	if ep.Description != "" {
		c.pdf.SetFont("Arial", "", 9)
		c.pdf.MultiCell(pdfPageWidth, 4, stripHTML(ep.Description), "", "", false)
	}
	c.pdf.Ln(2)

	if len(ep.Security) > 0 {
		c.addSubHeader("Authorization")
		c.pdf.SetFont("Arial", "", 9)
		for _, line := range ep.Security {
			c.pdf.MultiCell(pdfPageWidth, 4, "- "+line, "", "", false)
		}
		c.pdf.Ln(2)
	}

	if len(ep.Parameters) > 0 {
		c.addSubHeader("Parameters")
		c.addParameterTable(ep.Parameters)
	}

	if ep.RequestBody != nil {
		c.addSubHeader("Request Body")
		c.addRequestBody(ep)
	}

	if len(ep.Responses) > 0 {
		c.addSubHeader("Responses")
		c.addResponseTable(ep)
	}

	c.pdf.Ln(2)
	c.pdf.SetDrawColor(220, 220, 220)
	c.pdf.Line(pdfMarginLeft, c.pdf.GetY(), pdfMarginLeft+pdfPageWidth, c.pdf.GetY())
	c.pdf.SetDrawColor(180, 180, 180)
	c.pdf.Ln(6)
}

func (c *PDFConverter) addSubHeader(title string) {
	c.pdf.SetFont("Arial", "B", 10)
	c.pdf.SetTextColor(60, 60, 60)
	c.pdf.CellFormat(pdfPageWidth, 6, title, "", 1, "", false, 0, "")
	c.pdf.SetTextColor(0, 0, 0)
}

func (c *PDFConverter) addTableHeader(colWidths []float64, headers []string) {
	c.pdf.SetFont("Arial", "B", 8)
	c.pdf.SetFillColor(245, 245, 245)
	for i, header := range headers {
		c.pdf.CellFormat(colWidths[i], 6, header, "1", 0, "", true, 0, "")
	}
	c.pdf.Ln(-1)
}

func (c *PDFConverter) addParameterTable(params []domain.Parameter) {
	colWidths := []float64{35, 20, 15, 50, 70}
	c.addTableHeader(colWidths, []string{"Name", "In", "Required", "Type", "Description"})

	c.pdf.SetFont("Arial", "", 8)
	for _, param := range params {
		required := "No"
		if param.Required {
			required = "Yes"
		}
		contents := []string{param.Name, param.In, required, typeName(param.Schema), stripHTML(parameterDescription(param))}
		c.addTableRow(colWidths, contents, []string{"L", "L", "C", "L", "L"}, []int{0, 0, 0, c.schemaLink(param.Schema), 0})
	}
	c.pdf.Ln(3)
}

func (c *PDFConverter) addRequestBody(ep domain.ManualEndpoint) {
	rb := ep.RequestBody
	if rb.Required {
		c.pdf.SetFont("Arial", "I", 9)
		c.pdf.SetTextColor(60, 60, 60)
		c.pdf.CellFormat(pdfPageWidth, 5, "Required", "", 1, "", false, 0, "")
		c.pdf.SetTextColor(0, 0, 0)
	}
	if rb.Description != "" {
		c.pdf.SetFont("Arial", "", 9)
		c.pdf.MultiCell(pdfPageWidth, 4, stripHTML(rb.Description), "", "", false)
	}

	if contentType, s := domain.FirstSchema(rb.Content); s != nil {
		colWidths := []float64{60, 130}
		c.addTableHeader(colWidths, []string{"Content-Type", "Object"})
		c.pdf.SetFont("Arial", "", 8)
		c.addTableRow(colWidths, []string{contentType, typeName(s)}, nil, []int{0, c.schemaLink(s)})
	}

	if ep.RequestExample != "" {
		c.pdf.Ln(2)
		c.addExample(ep.RequestContentType, ep.RequestExample)
	}
	c.pdf.Ln(2)
}

func (c *PDFConverter) addResponseTable(ep domain.ManualEndpoint) {
	colWidths := []float64{25, 95, 70}
	c.addTableHeader(colWidths, []string{"Status", "Description", "Object"})

	c.pdf.SetFont("Arial", "", 8)
	for _, resp := range ep.Responses {
		object, link := c.responseObject(ep, resp.Code)
		c.addTableRow(colWidths, []string{resp.Code, stripHTML(resp.Description), object}, []string{"C", "L", "L"}, []int{0, 0, link})
	}

	for _, resp := range ep.Responses {
		if resp.Example != "" {
			c.pdf.Ln(2)
			c.addExample(resp.Code, resp.Example)
		}
	}
	c.pdf.Ln(3)
}

func (c *PDFConverter) responseObject(ep domain.ManualEndpoint, code string) (string, int) {
	if ep.Operation.Responses == nil {
		return "", 0
	}
	r, ok := ep.Operation.Responses.Get(code)
	if !ok || r == nil {
		return "", 0
	}
	_, s := domain.FirstSchema(r.Content)
	if s == nil {
		return "", 0
	}
	return typeName(s), c.schemaLink(s)
}

// schemaLink returns the entity link of a referenced schema, following array items.
func (c *PDFConverter) schemaLink(s *domain.Schema) int {
	for s != nil {
		if s.Ref != "" {
			return c.entityLinks[s.RefName()]
		}
		s = s.Items
	}
	return 0
}

func (c *PDFConverter) addEntity(entity domain.ManualEntity) {
	c.pdf.SetFont("Arial", "B", 12)
	c.pdf.CellFormat(pdfPageWidth, 7, entity.Name, "", 1, "", false, 0, "")

	if entity.Description != "" {
		c.pdf.SetFont("Arial", "", 9)
		c.pdf.SetTextColor(100, 100, 100)
		c.pdf.MultiCell(pdfPageWidth, 4, stripHTML(entity.Description), "", "", false)
		c.pdf.SetTextColor(0, 0, 0)
	}
	if entity.Example != "" {
		c.addExample("JSON", entity.Example)
	}
	c.pdf.Ln(6)
}

func (c *PDFConverter) addEndpointsSummary(endpoints []domain.ManualEndpoint, startTocIndex int) {
	if len(endpoints) == 0 {
		return
	}

	c.pdf.SetFont("Arial", "B", 11)
	c.pdf.CellFormat(pdfPageWidth, 6, "Endpoints in this section", "", 1, "", false, 0, "")
	c.pdf.Ln(2)

	colWidths := []float64{100, 75, 15}
	c.addTableHeader(colWidths, []string{"Summary", "Path", "Method"})

	c.pdf.SetFont("Arial", "", 9)
	for i, ep := range endpoints {
		summary := stripHTML(ep.Summary)
		if summary == "" {
			summary = ep.OperationID
		}
		if len(summary) > 60 {
			summary = summary[:57] + "..."
		}

		var linkIDs []int
		if idx := startTocIndex + i; idx < len(c.tocItems) {
			link := c.tocItems[idx].linkID
			linkIDs = []int{link, link, link}
		}
		c.addTableRow(colWidths, []string{summary, ep.Path, formatMethod(ep.Method)}, []string{"L", "L", "C"}, linkIDs)
	}
}

func (c *PDFConverter) addExample(title, content string) {
	c.checkPageBreak(30)

	c.pdf.SetFont("Arial", "I", 9)
	c.pdf.SetTextColor(60, 60, 60)
	c.pdf.CellFormat(pdfPageWidth, 6, "Example ("+title+"):", "", 1, "", false, 0, "")

	c.pdf.SetFont("Courier", "", 8)
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.SetFillColor(250, 250, 250)

	lines := strings.Split(content, "\n")
	c.checkPageBreak(float64(len(lines))*4.0 + 2)
	c.pdf.MultiCell(pdfPageWidth, 4, content, "1", "", true)
	c.pdf.Ln(4)
}

func (c *PDFConverter) addTableRow(colWidths []float64, contents []string, aligns []string, linkIDs []int) {
	maxLines := 1
	for i, content := range contents {
		if lines := c.pdf.SplitLines([]byte(content), colWidths[i]); len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * pdfLineHeight

	c.checkPageBreak(rowHeight)

	startX := c.pdf.GetX()
	startY := c.pdf.GetY()

	for i, content := range contents {
		width := colWidths[i]

		align := ""
		if len(aligns) > i {
			align = aligns[i]
		}
		linkID := 0
		if len(linkIDs) > i {
			linkID = linkIDs[i]
		}

		if linkID > 0 {
			c.pdf.SetTextColor(0, 102, 204)
		}
		c.pdf.SetXY(startX, startY)
		c.pdf.MultiCell(width, pdfLineHeight, content, "0", align, false)
		if linkID > 0 {
			c.pdf.Link(startX, startY, width, rowHeight, linkID)
			c.pdf.SetTextColor(0, 0, 0)
		}

		c.pdf.Rect(startX, startY, width, rowHeight, "D")
		startX += width
	}

	c.pdf.SetXY(pdfMarginLeft, startY+rowHeight)
}

func (c *PDFConverter) checkPageBreak(height float64) {
	_, pageHeight := c.pdf.GetPageSize()
	_, _, _, bottomMargin := c.pdf.GetMargins()

	if c.pdf.GetY()+height > pageHeight-bottomMargin-10 {
		c.pdf.AddPage()
	}
}
