package fetcher

import (
	"context"
	"path/filepath"
	"strings"
)

// Router dispatches a location to the fetcher that can serve it.
type Router struct {
	http       *HTTPFetcher
	file       *FileFetcher
	getter     *GetterFetcher
	remoteBase bool
}

// NewRouter builds a router for base, which is either an http(s) URL or a local path.
// Relative locations are fetched over HTTP for a URL base and from disk otherwise.
func NewRouter(base string, opts ...HTTPOption) (*Router, error) {
	r := &Router{getter: NewGetterFetcher("")}

	httpBase := ""
	fileBase := "."
	if isHTTP(base) {
		httpBase = base
		r.remoteBase = true
	} else if base != "" {
		fileBase = filepath.Dir(strings.TrimPrefix(base, "file://"))
	}

	h, err := NewHTTPFetcher(httpBase, opts...)
	if err != nil {
		return nil, err
	}
	r.http = h
	r.file = NewFileFetcher(fileBase)
	return r, nil
}

// Fetch implements domain.DocumentFetcher.
func (r *Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	switch {
	case isGetterSource(location):
		return r.getter.Fetch(ctx, location)
	case isHTTP(location):
		return r.http.Fetch(ctx, location)
	case strings.HasPrefix(location, "file://"):
		return r.file.Fetch(ctx, location)
	case r.remoteBase:
		return r.http.Fetch(ctx, location)
	default:
		return r.file.Fetch(ctx, location)
	}
}
