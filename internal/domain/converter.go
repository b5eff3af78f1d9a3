package domain

import "io"

// Converter defines the interface for manual exporters.
type Converter interface {
	// Convert renders the manual to the target format.
	Convert(manual *Manual, output io.Writer) error

	// Format returns the output format name (e.g., "pdf", "docx").
	Format() string
}

// Manual is a rendered snapshot of the active documentation, ready for export.
type Manual struct {
	Title           string
	Version         string
	Description     string
	Servers         []Server
	SecuritySchemes map[string]SecurityScheme
	Groups          []ManualGroup
	Entities        []ManualEntity
}

// ManualGroup is one document group of the manual.
type ManualGroup struct {
	Name  string
	Title string
	Tags  []ManualTag
}

// ManualTag lists the endpoints of a tag.
type ManualTag struct {
	Name      string
	Endpoints []ManualEndpoint
}

// ManualEndpoint is an operation with generated payload examples.
type ManualEndpoint struct {
	OperationRecord
	RequestContentType string
	RequestExample     string
	Responses          []ManualResponse
	Security           []string
}

// ManualResponse is one documented response code.
type ManualResponse struct {
	Code        string
	Description string
	Example     string
}

// ManualEntity is a component schema rendered as JSON example.
type ManualEntity struct {
	Name        string
	Description string
	Example     string
}
