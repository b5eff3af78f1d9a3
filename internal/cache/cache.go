// Package cache memoizes OpenAPI documents, swagger-configs and group documents
// per service and deduplicates concurrent fetches of the same resource.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// ServiceConfigSuffix is appended to a service URL to locate its swagger-config.
const ServiceConfigSuffix = "/swagger-config"

const mainKey = "main"

// Endpoints locates the primary document and its swagger-config.
type Endpoints struct {
	Doc    string
	Config string
}

// MainConfig is the primary document with its swagger-config.
type MainConfig struct {
	OpenAPI *domain.Document
	Config  *domain.SwaggerConfig
}

// ServiceData is a snapshot of one service entry.
type ServiceData struct {
	OpenAPI *domain.Document
	Config  *domain.SwaggerConfig
	APIData domain.APIData
}

type entry struct {
	openAPI   *domain.Document
	config    *domain.SwaggerConfig
	groupDocs map[string]*domain.Document
	apiData   domain.APIData
}

func (e *entry) snapshot() ServiceData {
	return ServiceData{OpenAPI: e.openAPI, Config: e.config, APIData: e.apiData}
}

// Cache holds fetched documents for the lifetime of the instance or until Reset.
type Cache struct {
	fetcher   domain.DocumentFetcher
	store     domain.KeyValueStore
	log       logger.ILogger
	endpoints Endpoints
	timeout   time.Duration

	mu      sync.RWMutex
	epoch   uint64
	flight  *singleflight.Group
	main    MainConfig
	entries map[string]*entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithTimeout bounds every shared fetch operation.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates an empty cache.
func New(fetcher domain.DocumentFetcher, store domain.KeyValueStore, endpoints Endpoints, log logger.ILogger, opts ...Option) *Cache {
	c := &Cache{
		fetcher:   fetcher,
		store:     store,
		log:       log,
		endpoints: endpoints,
		timeout:   10 * time.Second,
		flight:    &singleflight.Group{},
		entries:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoints returns the primary document locations.
func (c *Cache) Endpoints() Endpoints {
	return c.endpoints
}

// MainConfig returns the primary document and config, fetching both concurrently
// on first use. Concurrent callers share one in-flight fetch.
func (c *Cache) MainConfig(ctx context.Context) (MainConfig, error) {
	if m, ok := c.cachedMain(); ok {
		return m, nil
	}

	v, err := c.do(ctx, mainKey, func(ctx context.Context) (any, error) {
		if m, ok := c.cachedMain(); ok {
			return m, nil
		}
		epoch := c.currentEpoch()

		var m MainConfig
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			doc, err := c.fetchDocument(gctx, c.endpoints.Doc)
			m.OpenAPI = doc
			return err
		})
		g.Go(func() error {
			cfg, err := c.fetchConfig(gctx, c.endpoints.Config)
			m.Config = cfg
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.epoch == epoch {
			c.main = m
		}
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return MainConfig{}, err
	}
	return v.(MainConfig), nil
}

// ServiceData returns the document and config of a service, fetching only the
// missing parts. Concurrent callers for the same service share one task.
func (c *Cache) ServiceData(ctx context.Context, svc domain.ServiceItem) (ServiceData, error) {
	if d, ok := c.completeEntry(svc.URL); ok {
		return d, nil
	}

	v, err := c.do(ctx, "service:"+svc.URL, func(ctx context.Context) (any, error) {
		epoch := c.currentEpoch()
		current, _ := c.Entry(svc.URL)

		var doc *domain.Document
		var cfg *domain.SwaggerConfig
		g, gctx := errgroup.WithContext(ctx)
		if current.OpenAPI == nil {
			g.Go(func() error {
				d, err := c.fetchDocument(gctx, svc.URL)
				doc = d
				return err
			})
		}
		if current.Config == nil {
			g.Go(func() error {
				cf, err := c.fetchConfig(gctx, svc.URL+ServiceConfigSuffix)
				cfg = cf
				return err
			})
		}
		fetchErr := g.Wait()

		c.mu.Lock()
		if c.epoch == epoch {
			e := c.entryLocked(svc.URL)
			if e.openAPI == nil && doc != nil {
				e.openAPI = doc
			}
			if e.config == nil && cfg != nil {
				e.config = cfg
			}
			current = e.snapshot()
		} else {
			if doc != nil {
				current.OpenAPI = doc
			}
			if cfg != nil {
				current.Config = cfg
			}
		}
		c.mu.Unlock()

		if fetchErr != nil {
			return nil, fetchErr
		}
		if current.OpenAPI == nil || current.Config == nil {
			return nil, fmt.Errorf("incomplete service cache data for %s", svc.URL)
		}
		return current, nil
	})
	if err != nil {
		return ServiceData{}, err
	}
	return v.(ServiceData), nil
}

// ServiceGroupDoc returns a group document of a service. It is fetched once and kept until Reset.
func (c *Cache) ServiceGroupDoc(ctx context.Context, svc domain.ServiceItem, groupURL string) (*domain.Document, error) {
	if doc, err := c.GroupDoc(svc.URL, groupURL); err == nil {
		return doc, nil
	}

	v, err := c.do(ctx, "group:"+svc.URL+"|"+groupURL, func(ctx context.Context) (any, error) {
		if doc, err := c.GroupDoc(svc.URL, groupURL); err == nil {
			return doc, nil
		}
		epoch := c.currentEpoch()
		doc, err := c.fetchDocument(ctx, groupURL)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.epoch == epoch {
			c.entryLocked(svc.URL).groupDocs[groupURL] = doc
		}
		c.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Document), nil
}

// GroupDoc returns an already fetched group document.
func (c *Cache) GroupDoc(serviceURL, groupURL string) (*domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[serviceURL]
	if !ok {
		return nil, fmt.Errorf("service %s: %w", serviceURL, domain.ErrCacheNotFound)
	}
	doc, ok := e.groupDocs[groupURL]
	if !ok {
		return nil, fmt.Errorf("group %s of %s: %w", groupURL, serviceURL, domain.ErrCacheNotFound)
	}
	return doc, nil
}

// SeedServiceDoc stores a document obtained elsewhere, such as by a probe.
// An already cached document is kept.
func (c *Cache) SeedServiceDoc(serviceURL string, doc *domain.Document) {
	if doc == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entryLocked(serviceURL)
	if e.openAPI == nil {
		e.openAPI = doc
	}
}

// UpdateServiceAPIData replaces the grouped operations of an existing entry.
// It never creates an entry.
func (c *Cache) UpdateServiceAPIData(serviceURL string, data domain.APIData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[serviceURL]; ok {
		e.apiData = data
	}
}

// Entry returns a snapshot of a service entry.
func (c *Cache) Entry(serviceURL string) (ServiceData, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[serviceURL]
	if !ok {
		return ServiceData{}, fmt.Errorf("service %s: %w", serviceURL, domain.ErrCacheNotFound)
	}
	return e.snapshot(), nil
}

// Reset drops every cached document, the in-flight table and the persisted
// selection. Fetches still running complete but their results are not stored.
func (c *Cache) Reset() error {
	c.mu.Lock()
	c.epoch++
	c.flight = &singleflight.Group{}
	c.main = MainConfig{}
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	if err := c.store.Delete(domain.StoreKeyCurrentService, domain.StoreKeyServiceTabs); err != nil {
		return fmt.Errorf("clear persisted state: %w", err)
	}
	c.log.Infof("Cache reset")
	return nil
}

// do runs fn once per key among concurrent callers. The shared operation is detached
// from any single caller's cancellation and bounded by the cache timeout; each caller
// still stops waiting when its own context ends.
func (c *Cache) do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	c.mu.RLock()
	group := c.flight
	c.mu.RUnlock()

	ch := group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return fn(fctx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) fetchDocument(ctx context.Context, location string) (*domain.Document, error) {
	body, err := c.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	doc, err := domain.ParseDocument(body)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", location, err)
	}
	return doc, nil
}

func (c *Cache) fetchConfig(ctx context.Context, location string) (*domain.SwaggerConfig, error) {
	if location == "" {
		return &domain.SwaggerConfig{URLs: []domain.ConfigURL{}}, nil
	}
	body, err := c.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	cfg, err := domain.ParseConfig(body)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", location, err)
	}
	return cfg, nil
}

func (c *Cache) cachedMain() (MainConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.main, c.main.OpenAPI != nil && c.main.Config != nil
}

func (c *Cache) completeEntry(serviceURL string) (ServiceData, bool) {
	d, err := c.Entry(serviceURL)
	if err != nil {
		return ServiceData{}, false
	}
	return d, d.OpenAPI != nil && d.Config != nil
}

func (c *Cache) currentEpoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

func (c *Cache) entryLocked(serviceURL string) *entry {
	e, ok := c.entries[serviceURL]
	if !ok {
		e = &entry{groupDocs: make(map[string]*domain.Document)}
		c.entries[serviceURL] = e
	}
	return e
}

// IsNotFound reports whether err is a cache miss.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrCacheNotFound)
}
