// Package aggregation tracks the services of a multi-service deployment: their
// availability, the current selection and per-service UI state.
package aggregation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"golang.org/x/sync/errgroup"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/cache"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// DefaultProbeTimeout bounds a single availability probe.
const DefaultProbeTimeout = 3 * time.Second

// Registry owns the service list and the current selection.
type Registry struct {
	cache        *cache.Cache
	fetcher      domain.DocumentFetcher
	store        domain.KeyValueStore
	log          logger.ILogger
	probeTimeout time.Duration

	initMu sync.Mutex

	mu          sync.RWMutex
	initialized bool
	enabled     bool
	services    []domain.ServiceItem
	current     *domain.ServiceItem
	tabs        map[string]domain.TabsState
}

// Option configures a Registry.
type Option func(*Registry)

// WithProbeTimeout overrides DefaultProbeTimeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.probeTimeout = d
		}
	}
}

// NewRegistry creates a registry that probes services through fetcher and caches through c.
func NewRegistry(c *cache.Cache, fetcher domain.DocumentFetcher, store domain.KeyValueStore, log logger.ILogger, opts ...Option) *Registry {
	r := &Registry{
		cache:        c,
		fetcher:      fetcher,
		store:        store,
		log:          log,
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.tabs = r.loadTabs()
	return r
}

// Init builds the service list from the main swagger-config, probes every service
// and selects the current one. Only the first call does any work.
func (r *Registry) Init(ctx context.Context) error {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	r.mu.Lock()
	if r.initialized {
		r.mu.Unlock()
		return nil
	}
	r.initialized = true
	r.mu.Unlock()

	main, err := r.cache.MainConfig(ctx)
	if err != nil {
		r.mu.Lock()
		r.enabled = false
		r.mu.Unlock()
		r.log.Errorf("Aggregation init failed: %v", err)
		return fmt.Errorf("init aggregation: %w", err)
	}

	services := make([]domain.ServiceItem, 0, len(main.Config.URLs))
	for _, u := range main.Config.URLs {
		services = append(services, domain.NewServiceItem(u))
	}

	r.mu.Lock()
	r.enabled = true
	r.services = services
	r.mu.Unlock()

	r.ProbeAll(ctx)

	r.mu.Lock()
	r.current = r.selectLocked(r.loadSelection())
	selected := r.current
	r.mu.Unlock()

	if selected != nil {
		r.log.Infof("Aggregation initialized with %d service(s), current %s", len(services), selected.Name)
	} else {
		r.log.Infof("Aggregation initialized without services")
	}
	return nil
}

// selectLocked picks the current service: a persisted selection that is still
// present and enabled, then the first enabled service, then the first service.
func (r *Registry) selectLocked(persisted *domain.ServiceItem) *domain.ServiceItem {
	if len(r.services) == 0 {
		return nil
	}
	if persisted != nil {
		for i := range r.services {
			if r.services[i].URL == persisted.URL && !r.services[i].Disabled {
				s := r.services[i]
				return &s
			}
		}
	}
	for i := range r.services {
		if !r.services[i].Disabled {
			s := r.services[i]
			return &s
		}
	}
	s := r.services[0]
	return &s
}

// Services returns a copy of the service list.
func (r *Registry) Services() []domain.ServiceItem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ServiceItem(nil), r.services...)
}

// Service looks up a service by URL.
func (r *Registry) Service(url string) (domain.ServiceItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.services {
		if s.URL == url {
			return s, true
		}
	}
	return domain.ServiceItem{}, false
}

// Current returns the selected service.
func (r *Registry) Current() (domain.ServiceItem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return domain.ServiceItem{}, false
	}
	return *r.current, true
}

// Enabled reports whether aggregation mode is active.
func (r *Registry) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// Initialized reports whether Init has run.
func (r *Registry) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}

// Switch selects the service at url and persists the choice.
func (r *Registry) Switch(url string) error {
	r.mu.Lock()
	var target *domain.ServiceItem
	for i := range r.services {
		if r.services[i].URL == url {
			s := r.services[i]
			target = &s
			break
		}
	}
	if target == nil {
		r.mu.Unlock()
		return fmt.Errorf("switch to %s: %w", url, domain.ErrServiceNotFound)
	}
	if target.Disabled {
		r.mu.Unlock()
		return fmt.Errorf("switch to %s: %w", target.Name, domain.ErrServiceDisabled)
	}
	r.current = target
	r.mu.Unlock()

	r.persistSelection(*target)
	r.log.Infof("Switched to service %s", target.Name)
	return nil
}

// Reset clears every service, the selection, the tab state and the cache.
func (r *Registry) Reset() error {
	r.initMu.Lock()
	defer r.initMu.Unlock()

	r.mu.Lock()
	r.initialized = false
	r.enabled = false
	r.services = nil
	r.current = nil
	r.tabs = map[string]domain.TabsState{}
	r.mu.Unlock()

	return r.cache.Reset()
}

// updateStatus patches the status fields of the service at url.
func (r *Registry) updateStatus(url string, status domain.ServiceStatus, disabled bool, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.services {
		if r.services[i].URL == url {
			r.services[i].Status = status
			r.services[i].Disabled = disabled
			r.services[i].Reason = reason
		}
	}
	if r.current != nil && r.current.URL == url {
		r.current.Status = status
		r.current.Disabled = disabled
		r.current.Reason = reason
	}
}

type persistedService struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (r *Registry) loadSelection() *domain.ServiceItem {
	if r.store == nil {
		return nil
	}
	raw, ok, err := r.store.Get(domain.StoreKeyCurrentService)
	if err != nil || !ok {
		return nil
	}
	var p persistedService
	if err := json.Unmarshal(raw, &p); err != nil || p.URL == "" {
		return nil
	}
	return &domain.ServiceItem{Name: p.Name, URL: p.URL}
}

func (r *Registry) persistSelection(s domain.ServiceItem) {
	if r.store == nil {
		return
	}
	raw, err := json.Marshal(persistedService{Name: s.Name, URL: s.URL})
	if err == nil {
		err = r.store.Set(domain.StoreKeyCurrentService, raw)
	}
	if err != nil {
		r.log.Errorf("Persist current service: %v", err)
	}
}

// ProbeAll probes every known service concurrently. A failed probe only affects its own service.
func (r *Registry) ProbeAll(ctx context.Context) {
	services := r.Services()
	var g errgroup.Group
	for _, svc := range services {
		g.Go(func() error {
			r.Probe(ctx, svc)
			return nil
		})
	}
	g.Wait()
}
