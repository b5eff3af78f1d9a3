package aggregation

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

// SaveTabs records the tab strip of a service and persists all tab states.
func (r *Registry) SaveTabs(serviceURL string, state domain.TabsState) {
	if serviceURL == "" {
		return
	}
	if state.Tabs == nil {
		state.Tabs = []domain.Tab{}
	}

	r.mu.Lock()
	r.tabs[serviceURL] = state
	pairs := make([][2]any, 0, len(r.tabs))
	for _, url := range slices.Sorted(maps.Keys(r.tabs)) {
		pairs = append(pairs, [2]any{url, r.tabs[url]})
	}
	r.mu.Unlock()

	if r.store == nil {
		return
	}
	raw, err := json.Marshal(pairs)
	if err == nil {
		err = r.store.Set(domain.StoreKeyServiceTabs, raw)
	}
	if err != nil {
		r.log.Errorf("Persist tab state: %v", err)
	}
}

// Tabs returns the tab strip of a service, empty when none was saved.
func (r *Registry) Tabs(serviceURL string) domain.TabsState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.tabs[serviceURL]; ok {
		return s
	}
	return domain.TabsState{Tabs: []domain.Tab{}}
}

// loadTabs restores the persisted [url, state] pairs. Unreadable state is ignored.
func (r *Registry) loadTabs() map[string]domain.TabsState {
	tabs := map[string]domain.TabsState{}
	if r.store == nil {
		return tabs
	}
	raw, ok, err := r.store.Get(domain.StoreKeyServiceTabs)
	if err != nil || !ok {
		return tabs
	}
	var pairs []json.RawMessage
	if err := json.Unmarshal(raw, &pairs); err != nil {
		return tabs
	}
	for _, p := range pairs {
		var pair []json.RawMessage
		if err := json.Unmarshal(p, &pair); err != nil || len(pair) != 2 {
			continue
		}
		var url string
		var state domain.TabsState
		if json.Unmarshal(pair[0], &url) != nil || json.Unmarshal(pair[1], &state) != nil {
			continue
		}
		tabs[url] = state
	}
	return tabs
}
