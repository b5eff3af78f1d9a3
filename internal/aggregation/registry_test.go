package aggregation

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/adapters/storage"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/cache"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]string
	calls     []string
}

func (f *fakeFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, location)
	body, ok := f.responses[location]
	if !ok {
		return nil, &domain.FetchError{URL: location, StatusCode: http.StatusServiceUnavailable}
	}
	return []byte(body), nil
}

func (f *fakeFetcher) count(location string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == location {
			n++
		}
	}
	return n
}

func (f *fakeFetcher) set(location, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[location] = body
}

const (
	mainDoc    = "/v3/api-docs"
	mainConfig = "/v3/api-docs/swagger-config"
	serviceDoc = `{"openapi": "3.0.1", "paths": {}}`
)

func fixture(services ...string) map[string]string {
	responses := map[string]string{
		mainDoc: `{"openapi": "3.0.1", "paths": {}, "x-nextdoc4j-aggregation": {"aggregation": true}}`,
	}
	cfg := `{"urls": [`
	for i, s := range services {
		if i > 0 {
			cfg += ","
		}
		cfg += `{"name": "` + s[1:] + `", "url": "` + s + `"}`
	}
	responses[mainConfig] = cfg + `]}`
	return responses
}

func up(responses map[string]string, urls ...string) map[string]string {
	for _, u := range urls {
		responses[u] = serviceDoc
		responses[u+cache.ServiceConfigSuffix] = `{"urls": []}`
	}
	return responses
}

func newRegistry(t *testing.T, f *fakeFetcher, store domain.KeyValueStore) *Registry {
	t.Helper()
	log := logger.NewConsoleLogger(os.Stderr)
	c := cache.New(f, store, cache.Endpoints{Doc: mainDoc, Config: mainConfig}, log)
	return NewRegistry(c, f, store, log)
}

func TestInitIsIdempotent(t *testing.T) {
	f := &fakeFetcher{responses: up(fixture("/a", "/b"), "/a", "/b")}
	r := newRegistry(t, f, storage.NewMemoryStore())

	require.NoError(t, r.Init(context.Background()))
	require.NoError(t, r.Init(context.Background()))

	assert.True(t, r.Initialized())
	assert.True(t, r.Enabled())
	assert.Equal(t, 1, f.count(mainDoc))
	assert.Equal(t, 1, f.count(mainConfig))
	assert.Equal(t, 1, f.count("/a"), "each service is probed once")
	assert.Len(t, r.Services(), 2)
}

func TestInitFailureDisablesAggregation(t *testing.T) {
	f := &fakeFetcher{responses: map[string]string{mainDoc: serviceDoc}}
	r := newRegistry(t, f, storage.NewMemoryStore())

	assert.Error(t, r.Init(context.Background()))
	assert.False(t, r.Enabled())
	assert.True(t, r.Initialized())
	_, ok := r.Current()
	assert.False(t, ok)
}

func TestProbe(t *testing.T) {
	f := &fakeFetcher{responses: up(fixture("/a", "/b"), "/a")}
	r := newRegistry(t, f, storage.NewMemoryStore())
	require.NoError(t, r.Init(context.Background()))

	a, _ := r.Service("/a")
	assert.Equal(t, domain.StatusUp, a.Status)
	assert.False(t, a.Disabled)
	assert.Empty(t, a.Reason)

	b, _ := r.Service("/b")
	assert.Equal(t, domain.StatusDown, b.Status)
	assert.True(t, b.Disabled)
	assert.Contains(t, b.Reason, "503")

	t.Run("probe seeds the cache", func(t *testing.T) {
		_, err := r.cache.ServiceData(context.Background(), a)
		require.NoError(t, err)
		assert.Equal(t, 1, f.count("/a"))
	})

	t.Run("recovered service is re-enabled", func(t *testing.T) {
		f.set("/b", serviceDoc)
		assert.True(t, r.Probe(context.Background(), b))
		b, _ = r.Service("/b")
		assert.Equal(t, domain.StatusUp, b.Status)
		assert.False(t, b.Disabled)
	})
}

func TestSelectionPriority(t *testing.T) {
	persist := func(t *testing.T, url string) domain.KeyValueStore {
		store := storage.NewMemoryStore()
		require.NoError(t, store.Set(domain.StoreKeyCurrentService, []byte(`{"name": "x", "url": "`+url+`"}`)))
		return store
	}

	tests := []struct {
		name  string
		up    []string
		store domain.KeyValueStore
		want  string
	}{
		{name: "persisted and enabled", up: []string{"/a", "/b"}, store: persist(t, "/b"), want: "/b"},
		{name: "persisted but disabled", up: []string{"/a"}, store: persist(t, "/c"), want: "/a"},
		{name: "persisted but gone", up: []string{"/b"}, store: persist(t, "/zzz"), want: "/b"},
		{name: "first enabled", up: []string{"/c"}, store: storage.NewMemoryStore(), want: "/c"},
		{name: "all disabled falls back to first", up: nil, store: storage.NewMemoryStore(), want: "/a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeFetcher{responses: up(fixture("/a", "/b", "/c"), tt.up...)}
			r := newRegistry(t, f, tt.store)
			require.NoError(t, r.Init(context.Background()))

			cur, ok := r.Current()
			require.True(t, ok)
			assert.Equal(t, tt.want, cur.URL)
		})
	}

	t.Run("corrupt persisted selection is ignored", func(t *testing.T) {
		store := storage.NewMemoryStore()
		require.NoError(t, store.Set(domain.StoreKeyCurrentService, []byte(`{broken`)))
		f := &fakeFetcher{responses: up(fixture("/a", "/b"), "/a", "/b")}
		r := newRegistry(t, f, store)
		require.NoError(t, r.Init(context.Background()))

		cur, _ := r.Current()
		assert.Equal(t, "/a", cur.URL)
	})

	t.Run("no services", func(t *testing.T) {
		f := &fakeFetcher{responses: fixture()}
		r := newRegistry(t, f, storage.NewMemoryStore())
		require.NoError(t, r.Init(context.Background()))
		_, ok := r.Current()
		assert.False(t, ok)
	})
}

func TestAvailableServiceDataFallback(t *testing.T) {
	store := storage.NewMemoryStore()
	f := &fakeFetcher{responses: up(fixture("/s1", "/s2"), "/s2")}
	r := newRegistry(t, f, store)
	require.NoError(t, r.Init(context.Background()))

	s1, _ := r.Service("/s1")
	r.mu.Lock()
	r.current = &s1
	r.mu.Unlock()
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()

	sel, err := r.AvailableServiceData(context.Background(), &s1)
	require.NoError(t, err)

	assert.Equal(t, "/s2", sel.Service.URL)
	assert.Equal(t, domain.StatusUp, sel.Service.Status)
	require.NotNil(t, sel.OpenAPI)
	require.NotNil(t, sel.Config)

	f.mu.Lock()
	require.NotEmpty(t, f.calls)
	assert.True(t, strings.HasPrefix(f.calls[0], "/s1"), "preferred service is tried first")
	f.mu.Unlock()

	failed, _ := r.Service("/s1")
	assert.Equal(t, domain.StatusDown, failed.Status)
	assert.True(t, failed.Disabled)

	cur, _ := r.Current()
	assert.Equal(t, "/s2", cur.URL)
	raw, ok, err := store.Get(domain.StoreKeyCurrentService)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"name": "s2", "url": "/s2"}`, string(raw))
}

func TestAvailableServiceDataExhausted(t *testing.T) {
	f := &fakeFetcher{responses: fixture("/s1", "/s2")}
	r := newRegistry(t, f, storage.NewMemoryStore())
	require.NoError(t, r.Init(context.Background()))

	_, err := r.AvailableServiceData(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrNoAvailableService)

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.URL, "/s2")
}

func TestCandidateOrder(t *testing.T) {
	services := []domain.ServiceItem{{URL: "/a"}, {URL: "/b"}, {URL: "/c"}}
	preferred := domain.ServiceItem{URL: "/b"}
	c := newCandidates(&preferred, services)

	var order []string
	for {
		s, ok := c.advance()
		if !ok {
			break
		}
		order = append(order, s.URL)
	}
	assert.Equal(t, []string{"/b", "/a", "/c"}, order)
}

func TestSwitch(t *testing.T) {
	store := storage.NewMemoryStore()
	f := &fakeFetcher{responses: up(fixture("/a", "/b", "/c"), "/a", "/b")}
	r := newRegistry(t, f, store)
	require.NoError(t, r.Init(context.Background()))

	require.NoError(t, r.Switch("/b"))
	cur, _ := r.Current()
	assert.Equal(t, "/b", cur.URL)
	raw, ok, _ := store.Get(domain.StoreKeyCurrentService)
	require.True(t, ok)
	assert.JSONEq(t, `{"name": "b", "url": "/b"}`, string(raw))

	assert.ErrorIs(t, r.Switch("/c"), domain.ErrServiceDisabled)
	assert.ErrorIs(t, r.Switch("/nope"), domain.ErrServiceNotFound)
	cur, _ = r.Current()
	assert.Equal(t, "/b", cur.URL)
}

func TestTabs(t *testing.T) {
	store := storage.NewMemoryStore()
	f := &fakeFetcher{responses: up(fixture("/a"), "/a")}
	r := newRegistry(t, f, store)

	assert.Empty(t, r.Tabs("/a").Tabs)

	state := domain.TabsState{Tabs: []domain.Tab{{Path: "/document/all"}}, CurrentTab: "/document/all"}
	r.SaveTabs("/a", state)
	assert.Equal(t, state, r.Tabs("/a"))

	restored := newRegistry(t, f, store)
	assert.Equal(t, state, restored.Tabs("/a"))
}

func TestReset(t *testing.T) {
	store := storage.NewMemoryStore()
	f := &fakeFetcher{responses: up(fixture("/a", "/b"), "/a", "/b")}
	r := newRegistry(t, f, store)
	require.NoError(t, r.Init(context.Background()))
	require.NoError(t, r.Switch("/b"))
	r.SaveTabs("/b", domain.TabsState{Tabs: []domain.Tab{{Path: "/x"}}})

	require.NoError(t, r.Reset())

	assert.False(t, r.Initialized())
	assert.False(t, r.Enabled())
	assert.Empty(t, r.Services())
	_, ok := r.Current()
	assert.False(t, ok)
	assert.Empty(t, r.Tabs("/b").Tabs)
	_, ok, _ = store.Get(domain.StoreKeyCurrentService)
	assert.False(t, ok)
	_, ok, _ = store.Get(domain.StoreKeyServiceTabs)
	assert.False(t, ok)

	require.NoError(t, r.Init(context.Background()))
	assert.Equal(t, 2, f.count(mainDoc), "init after reset fetches again")
}
