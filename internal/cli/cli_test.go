package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/config"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

type fakeFetcher map[string]string

func (f fakeFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	body, ok := f[location]
	if !ok {
		return nil, &domain.FetchError{URL: location, StatusCode: http.StatusNotFound}
	}
	return []byte(body), nil
}

const petDoc = `{
	"openapi": "3.0.1",
	"info": {"title": "Pet Store", "version": "1.0"},
	"paths": {
		"/pets": {
			"get": {"tags": ["pets"], "summary": "List pets", "operationId": "listPets",
				"responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/Pet"}}}}}}},
			"post": {"tags": ["pets"], "operationId": "createPet",
				"requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/Pet"}}}}}
		}
	},
	"components": {
		"schemas": {
			"Pet": {"type": "object", "description": "A pet", "required": ["name"], "properties": {"name": {"type": "string", "example": "rex"}}}
		}
	},
	"x-nextdoc4j": {
		"markdown": [{"group": "Guides", "displayName": "Intro", "fileName": "intro.md", "content": "# Intro"}]
	}
}`

func singleDocs() fakeFetcher {
	return fakeFetcher{
		"/v3/api-docs":                petDoc,
		"/v3/api-docs/swagger-config": `{"urls": [{"name": "All", "url": "/v3/api-docs/all"}]}`,
	}
}

func aggregatedDocs() fakeFetcher {
	docs := fakeFetcher{
		"/v3/api-docs":                `{"openapi": "3.0.1", "paths": {}, "x-nextdoc4j-aggregation": {"aggregation": true}}`,
		"/v3/api-docs/swagger-config": `{"urls": [{"name": "pets", "url": "/pets/v3/api-docs"}, {"name": "store", "url": "/store/v3/api-docs"}]}`,
	}
	for _, svc := range []string{"/pets/v3/api-docs", "/store/v3/api-docs"} {
		docs[svc] = petDoc
		docs[svc+"/swagger-config"] = `{"urls": []}`
	}
	return docs
}

func newTestCLI(t *testing.T, docs fakeFetcher, stateFile string) *CLI {
	t.Helper()
	cfg := config.Defaults()
	cfg.BaseURL = "http://docs.test"
	cfg.StateFile = stateFile
	c := New(logger.NewConsoleLogger(os.Stderr), &cfg)
	c.newFetcher = func(config.Config) (domain.DocumentFetcher, error) { return docs, nil }
	return c
}

func run(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	c.rootCmd.SetOut(&buf)
	c.rootCmd.SetErr(&buf)
	c.rootCmd.SetArgs(args)
	err := c.Execute()
	return buf.String(), err
}

func statePath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "state.json")
}

func TestMenuCommand(t *testing.T) {
	out, err := run(t, newTestCLI(t, singleDocs(), statePath(t)), "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "All APIs")
	assert.Contains(t, out, "GET")
	assert.Contains(t, out, "/document/all/pets/listPets")
	assert.Contains(t, out, "Intro")
}

func TestMenuCommandJSON(t *testing.T) {
	out, err := run(t, newTestCLI(t, singleDocs(), statePath(t)), "menu", "--json")
	require.NoError(t, err)

	var menu []*domain.MenuNode
	require.NoError(t, json.Unmarshal([]byte(out), &menu))
	require.NotEmpty(t, menu)

	var names []string
	for _, n := range menu {
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "document")
	assert.Contains(t, names, "entity")
}

func TestOperationCommand(t *testing.T) {
	c := newTestCLI(t, singleDocs(), statePath(t))
	out, err := run(t, c, "operation", "all", "pets", "createPet", "--json")
	require.NoError(t, err)

	var view operationView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "POST", view.Method)
	assert.Equal(t, "/pets", view.Path)
	require.NotNil(t, view.Request)
	assert.Equal(t, "application/json", view.Request.ContentType)
	assert.Contains(t, view.Request.Example, `"name": "rex"`)
	require.NotEmpty(t, view.Request.Fields)
	assert.Equal(t, "name *", view.Request.Fields[0].Title)
}

func TestOperationCommandText(t *testing.T) {
	out, err := run(t, newTestCLI(t, singleDocs(), statePath(t)), "operation", "all", "pets", "listPets")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "GET /pets\n"))
	assert.Contains(t, out, "Operation ID: listPets")
	assert.Contains(t, out, "Responses:")
	assert.Contains(t, out, "200 ok")
}

func TestOperationCommandNotFound(t *testing.T) {
	_, err := run(t, newTestCLI(t, singleDocs(), statePath(t)), "operation", "all", "pets", "missing")
	assert.ErrorContains(t, err, "operation missing not found")
}

func TestEntityCommand(t *testing.T) {
	c := newTestCLI(t, singleDocs(), statePath(t))
	out, err := run(t, c, "entity", "all", "Pet")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Pet\nA pet\n"))
	assert.Contains(t, out, "Example:")
	assert.Contains(t, out, `"name": "rex"`)

	_, err = run(t, newTestCLI(t, singleDocs(), statePath(t)), "entity", "all", "Owner")
	assert.ErrorContains(t, err, "entity Owner not found")
}

func TestMarkdownCommand(t *testing.T) {
	out, err := run(t, newTestCLI(t, singleDocs(), statePath(t)), "markdown", "Guides", "Intro")
	require.NoError(t, err)
	assert.Equal(t, "# Intro\n", out)
}

func TestServicesRequiresAggregation(t *testing.T) {
	_, err := run(t, newTestCLI(t, singleDocs(), statePath(t)), "services")
	assert.ErrorIs(t, err, errNotAggregated)
}

func TestServicesAndSwitch(t *testing.T) {
	state := statePath(t)

	out, err := run(t, newTestCLI(t, aggregatedDocs(), state), "services")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "* UP"), lines[0])
	assert.Contains(t, lines[0], "/pets/v3/api-docs")
	assert.True(t, strings.HasPrefix(lines[1], "  UP"), lines[1])

	out, err = run(t, newTestCLI(t, aggregatedDocs(), state), "switch", "/store/v3/api-docs")
	require.NoError(t, err)
	assert.Contains(t, out, "Switched to store")

	// The selection survives into the next invocation.
	out, err = run(t, newTestCLI(t, aggregatedDocs(), state), "services")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "*"), lines[1])

	_, err = run(t, newTestCLI(t, aggregatedDocs(), state), "switch", "/unknown/v3/api-docs")
	assert.Error(t, err)
}

func TestTabsCommand(t *testing.T) {
	state := statePath(t)
	svc := "/pets/v3/api-docs"

	out, err := run(t, newTestCLI(t, singleDocs(), state), "tabs", svc, "--open", "/document/all/pets/listPets", "--title", "List pets")
	require.NoError(t, err)
	assert.Equal(t, "* /document/all/pets/listPets\tList pets\n", out)

	out, err = run(t, newTestCLI(t, singleDocs(), state), "tabs", svc, "--open", "/entity/all/Pet")
	require.NoError(t, err)
	assert.Equal(t, "  /document/all/pets/listPets\tList pets\n* /entity/all/Pet\t\n", out)

	out, err = run(t, newTestCLI(t, singleDocs(), state), "tabs", svc, "--close", "/entity/all/Pet")
	require.NoError(t, err)
	assert.Equal(t, "* /document/all/pets/listPets\tList pets\n", out)

	out, err = run(t, newTestCLI(t, singleDocs(), state), "tabs", svc, "--clear")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestApplyTabChanges(t *testing.T) {
	start := domain.TabsState{
		Tabs:       []domain.Tab{{Path: "/a"}, {Path: "/b"}, {Path: "/c"}},
		CurrentTab: "/b",
	}

	tests := []struct {
		name     string
		clearAll bool
		open     string
		closeTab string
		want     domain.TabsState
	}{
		{
			name: "no changes",
			want: start,
		},
		{
			name:     "close current moves to last",
			closeTab: "/b",
			want:     domain.TabsState{Tabs: []domain.Tab{{Path: "/a"}, {Path: "/c"}}, CurrentTab: "/c"},
		},
		{
			name:     "close other keeps current",
			closeTab: "/a",
			want:     domain.TabsState{Tabs: []domain.Tab{{Path: "/b"}, {Path: "/c"}}, CurrentTab: "/b"},
		},
		{
			name: "open existing only selects",
			open: "/a",
			want: domain.TabsState{Tabs: start.Tabs, CurrentTab: "/a"},
		},
		{
			name:     "clear then open",
			clearAll: true,
			open:     "/d",
			want:     domain.TabsState{Tabs: []domain.Tab{{Path: "/d"}}, CurrentTab: "/d"},
		},
		{
			name:     "clear",
			clearAll: true,
			want:     domain.TabsState{Tabs: []domain.Tab{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyTabChanges(start, tt.clearAll, tt.open, "", tt.closeTab)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Len(t, start.Tabs, 3, "input state is not modified")
}

func TestResetCommand(t *testing.T) {
	state := statePath(t)
	_, err := run(t, newTestCLI(t, singleDocs(), state), "tabs", "/svc", "--open", "/a")
	require.NoError(t, err)

	out, err := run(t, newTestCLI(t, singleDocs(), state), "reset")
	require.NoError(t, err)
	assert.Equal(t, "State cleared\n", out)

	out, err = run(t, newTestCLI(t, singleDocs(), state), "tabs", "/svc")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExportCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "docs.json")
	_, err := run(t, newTestCLI(t, singleDocs(), statePath(t)), "export", "-f", "confluence", "-o", output)
	require.NoError(t, err)

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "doc", doc["type"])
	assert.Contains(t, string(raw), `"text": " /pets"`)
	assert.Contains(t, string(raw), "Pet Store")

	_, err = run(t, newTestCLI(t, singleDocs(), statePath(t)), "export", "-f", "html", "-o", output)
	assert.ErrorContains(t, err, "supported:")
}

func TestEndpoints(t *testing.T) {
	cfg := config.Defaults()
	assert.Equal(t, "", endpoints(cfg).Config, "local documents skip the default config path")
	assert.Equal(t, "/v3/api-docs", endpoints(cfg).Doc)

	cfg.ConfigPath = "./swagger-config.json"
	assert.Equal(t, "./swagger-config.json", endpoints(cfg).Config)

	cfg = config.Defaults()
	cfg.BaseURL = "http://docs.test"
	assert.Equal(t, "/v3/api-docs/swagger-config", endpoints(cfg).Config)
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := config.Defaults()
	c := New(logger.NewConsoleLogger(os.Stderr), &cfg)
	c.rootCmd.SetArgs([]string{"--base-url", "http://other.test", "--retries", "5", "tabs", "/svc"})
	c.rootCmd.SetOut(&bytes.Buffer{})
	c.cfg.StateFile = statePath(t)
	require.NoError(t, c.Execute())
	assert.Equal(t, "http://other.test", c.cfg.BaseURL)
	assert.Equal(t, uint(5), c.cfg.RetryAttempts)
}
