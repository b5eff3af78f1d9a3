package routes

import (
	"sync"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// Preferences are the browser chrome settings derived from the active document.
type Preferences struct {
	AppName string `json:"appName"`
	Logo    string `json:"logo,omitempty"`
	Footer  string `json:"footer,omitempty"`
}

// Snapshot is the state applied by one successful generation.
type Snapshot struct {
	Service   *domain.ServiceItem
	APIData   domain.APIData
	OpenAPI   *domain.Document
	Config    *domain.SwaggerConfig
	GroupDocs map[string]*domain.Document
}

// APIContext holds the document set of the last successful generation and answers
// point lookups into it.
type APIContext struct {
	mu       sync.RWMutex
	snap     Snapshot
	markdown map[string][]domain.MarkdownDoc
	prefs    Preferences
	applied  bool
}

// NewAPIContext creates an empty context.
func NewAPIContext() *APIContext {
	return &APIContext{markdown: map[string][]domain.MarkdownDoc{}}
}

// Apply replaces the active document set. The last generation always wins.
func (c *APIContext) Apply(snap Snapshot) {
	markdown := map[string][]domain.MarkdownDoc{}
	for _, doc := range snap.OpenAPI.MarkdownDocs() {
		markdown[doc.Group] = append(markdown[doc.Group], doc)
	}

	prefs := Preferences{}
	if brand := snap.OpenAPI.Brand(); brand != nil {
		prefs.AppName = brand.Title
		prefs.Logo = brand.Logo
		prefs.Footer = brand.FooterText
	}
	if snap.OpenAPI != nil && snap.OpenAPI.Info.Title != "" {
		prefs.AppName = snap.OpenAPI.Info.Title
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
	c.markdown = markdown
	c.prefs = prefs
	c.applied = true
}

// Applied reports whether any generation has completed.
func (c *APIContext) Applied() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.applied
}

// Snapshot returns the active document set.
func (c *APIContext) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Preferences returns the active chrome settings.
func (c *APIContext) Preferences() Preferences {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefs
}

// SearchOperation finds an operation by group, tag and operationId.
func (c *APIContext) SearchOperation(group, tag, operationID string) (domain.OperationRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tags, ok := c.snap.APIData.Group(group)
	if !ok {
		return domain.OperationRecord{}, false
	}
	ops, ok := tags.Lookup(tag)
	if !ok {
		return domain.OperationRecord{}, false
	}
	for _, op := range ops {
		if op.OperationID == operationID {
			return op, true
		}
	}
	return domain.OperationRecord{}, false
}

// SearchMarkdown finds a markdown document by group and display name.
func (c *APIContext) SearchMarkdown(group, displayName string) (domain.MarkdownDoc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, doc := range c.markdown[group] {
		if doc.DisplayName == displayName {
			return doc, true
		}
	}
	return domain.MarkdownDoc{}, false
}

// Document returns the primary document of the active set.
func (c *APIContext) Document() *domain.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.OpenAPI
}

// Config returns the swagger-config of the active set.
func (c *APIContext) Config() *domain.SwaggerConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Config
}

// GroupDocument returns the document a group's schemas resolve against.
// The "all" group resolves against the primary document.
func (c *APIContext) GroupDocument(group string) (*domain.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if group == AllGroup {
		return c.snap.OpenAPI, c.snap.OpenAPI != nil
	}
	doc, ok := c.snap.GroupDocs[group]
	return doc, ok
}

// Reset forgets the active document set.
func (c *APIContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = Snapshot{}
	c.markdown = map[string][]domain.MarkdownDoc{}
	c.prefs = Preferences{}
	c.applied = false
}
