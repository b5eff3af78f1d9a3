package cache

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/adapters/storage"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]string
	calls     map[string]int
	gate      chan struct{}
}

func newFakeFetcher(responses map[string]string) *fakeFetcher {
	return &fakeFetcher{responses: responses, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	f.mu.Lock()
	f.calls[location]++
	gate := f.gate
	body, ok := f.responses[location]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, &domain.FetchError{URL: location, StatusCode: http.StatusNotFound}
	}
	return []byte(body), nil
}

func (f *fakeFetcher) count(location string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[location]
}

func (f *fakeFetcher) block() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	return f.gate
}

const (
	docURL    = "/v3/api-docs"
	configURL = "/v3/api-docs/swagger-config"
	svcURL    = "/v3/api-docs/user"
)

func testResponses() map[string]string {
	return map[string]string{
		docURL:                       `{"openapi": "3.0.1", "paths": {}}`,
		configURL:                    `{"urls": [{"name": "user", "url": "/v3/api-docs/user"}]}`,
		svcURL:                       `{"data": {"openapi": "3.0.1", "info": {"title": "User"}, "paths": {}}}`,
		svcURL + ServiceConfigSuffix: `{"urls": [{"name": "admin", "url": "/admin"}]}`,
		"/user/v3/api-docs/admin":    `{"openapi": "3.0.1", "paths": {"/admin": {}}}`,
	}
}

func newTestCache(f domain.DocumentFetcher, store domain.KeyValueStore) *Cache {
	return New(f, store, Endpoints{Doc: docURL, Config: configURL}, logger.NewConsoleLogger(os.Stderr))
}

func TestMainConfig(t *testing.T) {
	f := newFakeFetcher(testResponses())
	c := newTestCache(f, storage.NewMemoryStore())

	m, err := c.MainConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, m.OpenAPI)
	require.Len(t, m.Config.URLs, 1)

	_, err = c.MainConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.count(docURL))
	assert.Equal(t, 1, f.count(configURL))
}

func TestMainConfigWithoutConfigLocation(t *testing.T) {
	f := newFakeFetcher(testResponses())
	c := New(f, storage.NewMemoryStore(), Endpoints{Doc: docURL}, logger.NewConsoleLogger(os.Stderr))

	m, err := c.MainConfig(context.Background())
	require.NoError(t, err)
	assert.Empty(t, m.Config.URLs)
	assert.Equal(t, 0, f.count(configURL))
}

func TestMainConfigFailure(t *testing.T) {
	responses := testResponses()
	delete(responses, configURL)
	c := newTestCache(newFakeFetcher(responses), storage.NewMemoryStore())

	_, err := c.MainConfig(context.Background())
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, configURL, fe.URL)
}

func TestConcurrentCallsShareOneFetch(t *testing.T) {
	t.Run("service data", func(t *testing.T) {
		f := newFakeFetcher(testResponses())
		c := newTestCache(f, storage.NewMemoryStore())
		gate := f.block()
		svc := domain.ServiceItem{URL: svcURL}

		var wg sync.WaitGroup
		results := make([]ServiceData, 2)
		errs := make([]error, 2)
		for i := range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], errs[i] = c.ServiceData(context.Background(), svc)
			}()
		}

		require.Eventually(t, func() bool {
			return f.count(svcURL) == 1 && f.count(svcURL+ServiceConfigSuffix) == 1
		}, time.Second, time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(gate)
		wg.Wait()

		for i := range 2 {
			require.NoError(t, errs[i])
			assert.Equal(t, "User", results[i].OpenAPI.Info.Title)
			assert.Len(t, results[i].Config.URLs, 1)
		}
		assert.Equal(t, 1, f.count(svcURL))
		assert.Equal(t, 1, f.count(svcURL+ServiceConfigSuffix))
	})

	t.Run("main config", func(t *testing.T) {
		f := newFakeFetcher(testResponses())
		c := newTestCache(f, storage.NewMemoryStore())
		gate := f.block()

		var wg sync.WaitGroup
		for range 3 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := c.MainConfig(context.Background())
				assert.NoError(t, err)
			}()
		}
		require.Eventually(t, func() bool { return f.count(docURL) == 1 }, time.Second, time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(gate)
		wg.Wait()

		assert.Equal(t, 1, f.count(docURL))
		assert.Equal(t, 1, f.count(configURL))
	})
}

func TestServiceDataFetchesOnlyMissingFields(t *testing.T) {
	f := newFakeFetcher(testResponses())
	c := newTestCache(f, storage.NewMemoryStore())
	svc := domain.ServiceItem{URL: svcURL}

	seeded, err := domain.ParseDocument([]byte(`{"info": {"title": "Seeded"}, "paths": {}}`))
	require.NoError(t, err)
	c.SeedServiceDoc(svcURL, seeded)

	data, err := c.ServiceData(context.Background(), svc)
	require.NoError(t, err)
	assert.Equal(t, "Seeded", data.OpenAPI.Info.Title)
	assert.Equal(t, 0, f.count(svcURL))
	assert.Equal(t, 1, f.count(svcURL+ServiceConfigSuffix))
}

func TestServiceDataFailureAllowsRetry(t *testing.T) {
	responses := testResponses()
	delete(responses, svcURL)
	f := newFakeFetcher(responses)
	c := newTestCache(f, storage.NewMemoryStore())
	svc := domain.ServiceItem{URL: svcURL}

	_, err := c.ServiceData(context.Background(), svc)
	require.Error(t, err)

	f.mu.Lock()
	f.responses[svcURL] = `{"paths": {}}`
	f.mu.Unlock()

	_, err = c.ServiceData(context.Background(), svc)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count(svcURL))
	assert.Equal(t, 1, f.count(svcURL+ServiceConfigSuffix), "config stored by the failed attempt is reused")
}

func TestServiceGroupDoc(t *testing.T) {
	f := newFakeFetcher(testResponses())
	c := newTestCache(f, storage.NewMemoryStore())
	svc := domain.ServiceItem{URL: svcURL}
	group := "/user/v3/api-docs/admin"

	_, err := c.GroupDoc(svcURL, group)
	assert.True(t, IsNotFound(err))

	for range 3 {
		doc, err := c.ServiceGroupDoc(context.Background(), svc, group)
		require.NoError(t, err)
		assert.True(t, doc.HasPaths())
	}
	assert.Equal(t, 1, f.count(group))

	doc, err := c.GroupDoc(svcURL, group)
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestUpdateServiceAPIData(t *testing.T) {
	c := newTestCache(newFakeFetcher(testResponses()), storage.NewMemoryStore())
	data := domain.APIData{{Group: "all"}}

	c.UpdateServiceAPIData(svcURL, data)
	_, err := c.Entry(svcURL)
	assert.True(t, IsNotFound(err), "update must not create an entry")

	_, err = c.ServiceData(context.Background(), domain.ServiceItem{URL: svcURL})
	require.NoError(t, err)
	c.UpdateServiceAPIData(svcURL, data)

	entry, err := c.Entry(svcURL)
	require.NoError(t, err)
	assert.Equal(t, data, entry.APIData)
}

func TestReset(t *testing.T) {
	f := newFakeFetcher(testResponses())
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(domain.StoreKeyCurrentService, []byte(`{"url": "/x"}`)))
	require.NoError(t, store.Set(domain.StoreKeyServiceTabs, []byte(`[]`)))
	c := newTestCache(f, store)

	_, err := c.MainConfig(context.Background())
	require.NoError(t, err)
	_, err = c.ServiceData(context.Background(), domain.ServiceItem{URL: svcURL})
	require.NoError(t, err)

	require.NoError(t, c.Reset())

	_, err = c.Entry(svcURL)
	assert.True(t, IsNotFound(err))
	_, ok, _ := store.Get(domain.StoreKeyCurrentService)
	assert.False(t, ok)
	_, ok, _ = store.Get(domain.StoreKeyServiceTabs)
	assert.False(t, ok)

	_, err = c.MainConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, f.count(docURL))
	assert.Equal(t, 2, f.count(configURL))
}

func TestResetDropsInFlightResults(t *testing.T) {
	f := newFakeFetcher(testResponses())
	c := newTestCache(f, storage.NewMemoryStore())
	gate := f.block()

	done := make(chan error, 1)
	go func() {
		_, err := c.ServiceData(context.Background(), domain.ServiceItem{URL: svcURL})
		done <- err
	}()
	require.Eventually(t, func() bool { return f.count(svcURL) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, c.Reset())
	close(gate)
	require.NoError(t, <-done)

	_, err := c.Entry(svcURL)
	assert.True(t, IsNotFound(err))
}

func TestCallerCancellation(t *testing.T) {
	f := newFakeFetcher(testResponses())
	c := newTestCache(f, storage.NewMemoryStore())
	gate := f.block()
	defer close(gate)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.MainConfig(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
