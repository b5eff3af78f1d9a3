package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petDoc = `{
  "openapi": "3.0.1",
  "info": {"title": "Pets", "version": "1"},
  "paths": {
    "/pets": {
      "parameters": [],
      "post": {"tags": ["pets"], "operationId": "createPet"},
      "get": {"tags": ["pets"], "operationId": "listPets"}
    },
    "/pets/{id}": {
      "delete": {}
    }
  },
  "components": {"schemas": {"Zeta": {"type": ["null", "string"]}, "Alpha": {"type": "object"}}}
}`

func TestParseDocument(t *testing.T) {
	t.Run("bare document keeps order", func(t *testing.T) {
		doc, err := ParseDocument([]byte(petDoc))
		require.NoError(t, err)

		assert.True(t, doc.HasPaths())
		assert.Equal(t, "Pets", doc.Info.Title)

		var paths []string
		for p := doc.Paths.Oldest(); p != nil; p = p.Next() {
			paths = append(paths, p.Key)
		}
		assert.Equal(t, []string{"/pets", "/pets/{id}"}, paths)

		item, ok := doc.Paths.Get("/pets")
		require.True(t, ok)
		assert.Equal(t, 2, item.Operations.Len())
		assert.Equal(t, "post", item.Operations.Oldest().Key)

		assert.Equal(t, []string{"Zeta", "Alpha"}, doc.SchemaNames())
		zeta, ok := doc.LookupSchema("Zeta")
		require.True(t, ok)
		assert.Equal(t, TypeString, zeta.Type)
	})

	t.Run("missing operationId is synthesized", func(t *testing.T) {
		doc, err := ParseDocument([]byte(petDoc))
		require.NoError(t, err)

		item, _ := doc.Paths.Get("/pets/{id}")
		op, ok := item.Operations.Get("delete")
		require.True(t, ok)
		assert.Equal(t, "delete_pets_id", op.OperationID)
	})

	t.Run("envelope is unwrapped", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`{"code": 0, "data": ` + petDoc + `}`))
		require.NoError(t, err)
		assert.Equal(t, "Pets", doc.Info.Title)
		assert.Equal(t, 2, doc.Paths.Len())
	})

	t.Run("data inside a document is not an envelope", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`{"openapi": "3.0.0", "data": {"paths": {}}}`))
		require.NoError(t, err)
		assert.False(t, doc.HasPaths())
		assert.Equal(t, "3.0.0", doc.OpenAPI)
	})

	t.Run("missing paths defaults to empty", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`{"openapi": "3.0.0"}`))
		require.NoError(t, err)
		assert.False(t, doc.HasPaths())
		assert.Equal(t, 0, doc.Paths.Len())
		assert.NotNil(t, doc.Components.Schemas)
		_, ok := doc.LookupSchema("Missing")
		assert.False(t, ok)
	})

	t.Run("extensions", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`{
			"paths": {},
			"security": [{"bearer": []}],
			"x-nextdoc4j": {"brand": {"title": "Shop"}, "markdown": [{"group": "guide", "displayName": "Intro"}]},
			"x-nextdoc4j-aggregation": {"aggregation": true}
		}`))
		require.NoError(t, err)
		assert.True(t, doc.IsAggregation())
		assert.True(t, doc.HasSecurity())
		require.NotNil(t, doc.Brand())
		assert.Equal(t, "Shop", doc.Brand().Title)
		assert.Len(t, doc.MarkdownDocs(), 1)
	})

	t.Run("malformed members degrade", func(t *testing.T) {
		doc, err := ParseDocument([]byte(`{
			"openapi": "3.0.1",
			"servers": {"url": "not-a-list"},
			"paths": {
				"/pets": {
					"get": {"tags": "pets", "summary": "List pets", "operationId": "listPets",
						"parameters": [{"name": "limit", "in": "query", "required": "yes"}],
						"responses": {"200": {"description": "ok", "content": "application/json"}, "404": "missing"}},
					"post": "broken"
				},
				"/owners": ["get"]
			},
			"components": {
				"securitySchemes": [],
				"schemas": {
					"Pet": {"type": "object", "properties": {"name": {"type": "string", "required": true}}},
					"Odd": {"type": 5, "description": "odd"},
					"Flag": true
				}
			}
		}`))
		require.NoError(t, err)
		assert.Empty(t, doc.Servers)
		assert.Nil(t, doc.Components.SecuritySchemes)

		item, ok := doc.Paths.Get("/pets")
		require.True(t, ok)
		get, ok := item.Operations.Get("get")
		require.True(t, ok)
		assert.Nil(t, get.Tags)
		assert.Equal(t, "List pets", get.Summary)
		assert.Equal(t, "listPets", get.OperationID)
		require.Len(t, get.Parameters, 1)
		assert.Equal(t, "limit", get.Parameters[0].Name)
		assert.False(t, get.Parameters[0].Required)
		require.NotNil(t, get.Responses)
		ok200, _ := get.Responses.Get("200")
		require.NotNil(t, ok200)
		assert.Equal(t, "ok", ok200.Description)
		assert.Nil(t, ok200.Content)

		post, ok := item.Operations.Get("post")
		require.True(t, ok)
		assert.Equal(t, "post_pets", post.OperationID)

		owners, ok := doc.Paths.Get("/owners")
		require.True(t, ok)
		assert.Equal(t, 0, owners.Operations.Len())

		pet, ok := doc.LookupSchema("Pet")
		require.True(t, ok)
		assert.Empty(t, pet.Error)
		name, _ := pet.Properties.Get("name")
		require.NotNil(t, name)
		assert.Equal(t, TypeString, name.Type)
		assert.Nil(t, name.Required)
		assert.Equal(t, "invalid schema field(s): required", name.Error)

		odd, _ := doc.LookupSchema("Odd")
		require.NotNil(t, odd)
		assert.Equal(t, "odd", odd.Description)
		assert.Equal(t, "invalid schema field(s): type", odd.Error)

		flag, _ := doc.LookupSchema("Flag")
		require.NotNil(t, flag)
		assert.Equal(t, TypeError, flag.Type)
	})

	t.Run("invalid payloads", func(t *testing.T) {
		_, err := ParseDocument(nil)
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, CodeEmptyPayload, perr.Code)

		_, err = ParseDocument([]byte(`[1, 2]`))
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, CodeInvalidDocument, perr.Code)
	})
}

func TestParseConfig(t *testing.T) {
	t.Run("bare", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`{"configUrl": "/v3/api-docs/swagger-config", "urls": [{"name": "user", "url": "/v3/api-docs/user"}]}`))
		require.NoError(t, err)
		require.Len(t, cfg.URLs, 1)
		assert.Equal(t, "/v3/api-docs/user", cfg.URLs[0].URL)
	})

	t.Run("envelope", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`{"data": {"urls": [{"name": "a", "url": "/a", "serviceId": "svc-a"}]}}`))
		require.NoError(t, err)
		require.Len(t, cfg.URLs, 1)
		assert.Equal(t, "svc-a", cfg.URLs[0].ServiceID)
	})

	t.Run("missing urls", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`{}`))
		require.NoError(t, err)
		assert.NotNil(t, cfg.URLs)
		assert.Empty(t, cfg.URLs)
	})
}

func TestRefName(t *testing.T) {
	assert.Equal(t, "Pet", RefName("#/components/schemas/Pet"))
	assert.Equal(t, "Pet", RefName("Pet"))
	assert.Equal(t, "", (*Schema)(nil).RefName())
}
