package fetcher

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// GetterFetcher downloads documents from go-getter sources such as
// s3::https://bucket.s3.amazonaws.com/api.yaml or git::https://host/repo//api.json.
type GetterFetcher struct {
	tmpRoot string
}

// NewGetterFetcher creates a fetcher that stages downloads under tmpRoot (os.TempDir when empty).
func NewGetterFetcher(tmpRoot string) *GetterFetcher {
	return &GetterFetcher{tmpRoot: tmpRoot}
}

// Fetch downloads the file at location and reads it like a local document.
func (f *GetterFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	dir, err := os.MkdirTemp(f.tmpRoot, "nextdoc-getter-*")
	if err != nil {
		return nil, &domain.FetchError{URL: location, Err: err}
	}
	defer os.RemoveAll(dir)

	dst := filepath.Join(dir, documentName(location))
	if err := getter.GetFile(dst, location, getter.WithContext(ctx)); err != nil {
		return nil, &domain.FetchError{URL: location, Err: err}
	}
	return loadFile(ctx, dst)
}

// documentName derives a local file name, keeping the extension that selects the decoder.
func documentName(location string) string {
	src := location
	if i := strings.Index(src, "::"); i >= 0 {
		src = src[i+2:]
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	name := path.Base(src)
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return name
	default:
		return "document.json"
	}
}

func isGetterSource(location string) bool {
	if strings.Contains(location, "::") {
		return true
	}
	l := strings.ToLower(location)
	for _, scheme := range []string{"s3://", "gcs://", "gs://", "git@"} {
		if strings.HasPrefix(l, scheme) {
			return true
		}
	}
	return false
}
