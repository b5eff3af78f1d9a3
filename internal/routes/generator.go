// Package routes turns OpenAPI documents into the browser's navigation tree and
// keeps the document set of the last generation available for lookups.
package routes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/aggregation"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/cache"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/taggroup"
)

// DocsPathSuffix marks the end of a service's base path inside its document URL.
const DocsPathSuffix = "/v3/api-docs"

// Generator builds the navigation tree in single-document or aggregation mode.
type Generator struct {
	cache    *cache.Cache
	registry *aggregation.Registry
	api      *APIContext
	log      logger.ILogger

	seq     atomic.Uint64
	applyMu sync.Mutex
}

// NewGenerator wires a generator to its collaborators.
func NewGenerator(c *cache.Cache, registry *aggregation.Registry, api *APIContext, log logger.ILogger) *Generator {
	return &Generator{cache: c, registry: registry, api: api, log: log}
}

// run identifies one generation call.
type run struct {
	id  string
	seq uint64
}

type groupRef struct {
	name  string
	title string
	url   string
}

// Generate builds the menu. Only a failure to load the main document is returned;
// aggregation failures are logged and produce an empty menu.
func (g *Generator) Generate(ctx context.Context) ([]*domain.MenuNode, error) {
	r := run{id: uuid.NewString(), seq: g.seq.Add(1)}

	main, err := g.cache.MainConfig(ctx)
	if err != nil {
		g.log.Errorf("[%s] Load main document: %v", r.id, err)
		return nil, fmt.Errorf("load main document: %w", err)
	}

	if main.OpenAPI.IsAggregation() {
		return g.generateAggregated(ctx, r), nil
	}
	return g.generateSingle(ctx, r, main), nil
}

func (g *Generator) generateSingle(ctx context.Context, r run, main cache.MainConfig) []*domain.MenuNode {
	g.log.Infof("[%s] Generating routes for single document", r.id)

	svc := domain.ServiceItem{Name: "main", URL: g.cache.Endpoints().Doc}
	buckets := []bucket{allBucket(main.OpenAPI)}

	groups, docs, err := g.fetchGroups(ctx, svc, groupRefs(main.Config, ""))
	if err != nil {
		g.log.Errorf("[%s] Load group documents, keeping %q only: %v", r.id, AllGroup, err)
		docs = nil
	} else {
		buckets = append(buckets, groups...)
	}

	g.apply(r, Snapshot{
		APIData:   toAPIData(buckets),
		OpenAPI:   main.OpenAPI,
		Config:    main.Config,
		GroupDocs: docs,
	})
	return buildMenu(buckets, main.OpenAPI)
}

func (g *Generator) generateAggregated(ctx context.Context, r run) []*domain.MenuNode {
	g.log.Infof("[%s] Generating routes in aggregation mode", r.id)
	empty := []*domain.MenuNode{}

	if err := g.registry.Init(ctx); err != nil || !g.registry.Enabled() {
		g.log.Errorf("[%s] Aggregation unavailable: %v", r.id, err)
		return empty
	}
	current, ok := g.registry.Current()
	if !ok {
		g.log.Errorf("[%s] No service to browse", r.id)
		return empty
	}

	sel, err := g.registry.AvailableServiceData(ctx, &current)
	if err != nil {
		g.log.Errorf("[%s] No service yielded data: %v", r.id, err)
		return empty
	}
	if !sel.OpenAPI.HasPaths() {
		g.log.Errorf("[%s] Service %s: %v", r.id, sel.Service.Name, domain.ErrInvalidServiceData)
		return empty
	}

	buckets := []bucket{allBucket(sel.OpenAPI)}
	groups, docs, err := g.fetchGroups(ctx, sel.Service, groupRefs(sel.Config, servicePrefix(sel.Service.URL)))
	if err != nil {
		g.log.Errorf("[%s] Load group documents of %s, keeping %q only: %v", r.id, sel.Service.Name, AllGroup, err)
		docs = nil
	} else {
		buckets = append(buckets, groups...)
	}

	data := toAPIData(buckets)
	g.cache.UpdateServiceAPIData(sel.Service.URL, data)

	svc := sel.Service
	g.apply(r, Snapshot{
		Service:   &svc,
		APIData:   data,
		OpenAPI:   sel.OpenAPI,
		Config:    sel.Config,
		GroupDocs: docs,
	})
	return buildMenu(buckets, sel.OpenAPI)
}

// fetchGroups loads every group document concurrently. Any failure fails the batch.
func (g *Generator) fetchGroups(ctx context.Context, svc domain.ServiceItem, refs []groupRef) ([]bucket, map[string]*domain.Document, error) {
	if len(refs) == 0 {
		return nil, map[string]*domain.Document{}, nil
	}

	buckets := make([]bucket, len(refs))
	fetched := make([]*domain.Document, len(refs))
	eg, ectx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		eg.Go(func() error {
			doc, err := g.cache.ServiceGroupDoc(ectx, svc, ref.url)
			if err != nil {
				return fmt.Errorf("group %s: %w", ref.name, err)
			}
			fetched[i] = doc
			buckets[i] = bucket{
				group:   ref.name,
				title:   ref.title,
				tags:    taggroup.GroupByTag(doc.Paths),
				schemas: doc.SchemaNames(),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	docs := make(map[string]*domain.Document, len(refs))
	for i, ref := range refs {
		docs[ref.name] = fetched[i]
	}
	return buckets, docs, nil
}

// apply publishes a generation result unless a newer generation has started since.
func (g *Generator) apply(r run, snap Snapshot) bool {
	g.applyMu.Lock()
	defer g.applyMu.Unlock()
	if latest := g.seq.Load(); latest != r.seq {
		g.log.Infof("[%s] Discarding stale generation %d, latest is %d", r.id, r.seq, latest)
		return false
	}
	g.api.Apply(snap)
	return true
}

func allBucket(doc *domain.Document) bucket {
	return bucket{
		group:   AllGroup,
		title:   titleAll,
		tags:    taggroup.GroupByTag(doc.Paths),
		schemas: doc.SchemaNames(),
	}
}

// groupRefs lists the config entries that name a group other than "all".
func groupRefs(cfg *domain.SwaggerConfig, prefix string) []groupRef {
	if cfg == nil {
		return nil
	}
	var refs []groupRef
	for _, u := range cfg.URLs {
		name := lastSegment(u.URL)
		if name == "" || name == AllGroup {
			continue
		}
		title := u.Name
		if title == "" {
			title = titleDefaultGroup
		}
		refs = append(refs, groupRef{name: name, title: title, url: prefix + u.URL})
	}
	return refs
}

func lastSegment(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

// servicePrefix strips the docs suffix from a service document URL,
// e.g. "/user/v3/api-docs" becomes "/user".
func servicePrefix(serviceURL string) string {
	if i := strings.LastIndex(serviceURL, DocsPathSuffix); i >= 0 {
		return serviceURL[:i]
	}
	return strings.TrimRight(serviceURL, "/")
}
