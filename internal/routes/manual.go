package routes

import (
	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/schema"
)

// Manual renders the active document set into an exportable manual.
// It returns nil before the first generation.
func (c *APIContext) Manual() *domain.Manual {
	if !c.Applied() {
		return nil
	}
	snap := c.Snapshot()
	doc := snap.OpenAPI
	if doc == nil {
		return nil
	}

	m := &domain.Manual{
		Title:           c.Preferences().AppName,
		Version:         doc.Info.Version,
		Description:     doc.Info.Description,
		Servers:         doc.Servers,
		SecuritySchemes: doc.Components.SecuritySchemes,
	}
	if m.Title == "" {
		m.Title = "API Documentation"
	}

	for _, g := range snap.APIData {
		source := doc
		if g.Group != AllGroup {
			if gd, ok := snap.GroupDocs[g.Group]; ok {
				source = gd
			}
		}
		resolver := schema.NewResolver(source)

		mg := domain.ManualGroup{Name: g.Group, Title: g.Title}
		for _, tg := range g.Tags {
			mt := domain.ManualTag{Name: tg.Tag}
			for _, op := range tg.Operations {
				mt.Endpoints = append(mt.Endpoints, manualEndpoint(resolver, op))
			}
			mg.Tags = append(mg.Tags, mt)
		}
		m.Groups = append(m.Groups, mg)
	}

	resolver := schema.NewResolver(doc)
	for _, name := range doc.SchemaNames() {
		resolved := resolver.ResolveName(name)
		example, _ := schema.ExampleJSON(resolved)
		m.Entities = append(m.Entities, domain.ManualEntity{
			Name:        name,
			Description: schema.Describe(resolved),
			Example:     example,
		})
	}
	return m
}

func manualEndpoint(resolver *schema.Resolver, op domain.OperationRecord) domain.ManualEndpoint {
	ep := domain.ManualEndpoint{
		OperationRecord: op,
		Security:        schema.SecurityDetails(&op.Operation),
	}
	if op.RequestBody != nil {
		ct, s := domain.FirstSchema(op.RequestBody.Content)
		ep.RequestContentType = ct
		if s != nil {
			ep.RequestExample, _ = schema.ExampleJSON(resolver.Resolve(s))
		}
	}
	if op.Responses == nil {
		return ep
	}
	for pair := op.Responses.Oldest(); pair != nil; pair = pair.Next() {
		resp := domain.ManualResponse{Code: pair.Key}
		if pair.Value != nil {
			resp.Description = pair.Value.Description
			if _, s := domain.FirstSchema(pair.Value.Content); s != nil {
				resp.Example, _ = schema.ExampleJSON(resolver.Resolve(s))
			}
		}
		ep.Responses = append(ep.Responses, resp)
	}
	return ep
}
