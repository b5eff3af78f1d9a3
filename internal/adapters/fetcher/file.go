package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// FileFetcher reads documents from the local filesystem.
// JSON files are returned verbatim; YAML files are loaded with kin-openapi,
// their external references internalized, and re-encoded as JSON.
type FileFetcher struct {
	baseDir string
}

// NewFileFetcher creates a fetcher that resolves relative paths against baseDir.
func NewFileFetcher(baseDir string) *FileFetcher {
	return &FileFetcher{baseDir: baseDir}
}

// Fetch reads the document at location.
func (f *FileFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	path := strings.TrimPrefix(location, "file://")
	if !filepath.IsAbs(path) {
		path = filepath.Join(f.baseDir, path)
	}
	return loadFile(ctx, path)
}

func loadFile(ctx context.Context, path string) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &domain.FetchError{URL: path, Err: err}
		}
		return data, nil
	}
	return loadOpenAPIFile(ctx, path)
}

func loadOpenAPIFile(ctx context.Context, path string) ([]byte, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &domain.FetchError{URL: path, Err: fmt.Errorf("resolve path: %w", err)}
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	loader.Context = ctx

	doc, err := loader.LoadFromFile(absPath)
	if err != nil {
		return nil, &domain.FetchError{URL: path, Err: fmt.Errorf("load OpenAPI document: %w", err)}
	}
	doc.InternalizeRefs(ctx, nil)

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, &domain.FetchError{URL: path, Err: fmt.Errorf("encode document: %w", err)}
	}
	return data, nil
}
