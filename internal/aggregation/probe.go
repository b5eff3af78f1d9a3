package aggregation

import (
	"context"
	"errors"
	"fmt"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/cache"
	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

const unavailableReason = "Service unavailable"

// Probe fetches the service document within the probe timeout and records the
// outcome on the service. A fetched document seeds the cache.
func (r *Registry) Probe(ctx context.Context, svc domain.ServiceItem) bool {
	pctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	doc, err := r.probe(pctx, svc.URL)
	if err != nil {
		r.updateStatus(svc.URL, domain.StatusDown, true, failureReason(err))
		r.log.Errorf("Service %s is unavailable: %v", svc.Name, err)
		return false
	}
	r.cache.SeedServiceDoc(svc.URL, doc)
	r.updateStatus(svc.URL, domain.StatusUp, false, "")
	return true
}

func (r *Registry) probe(ctx context.Context, url string) (*domain.Document, error) {
	body, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return domain.ParseDocument(body)
}

func failureReason(err error) string {
	if err == nil || err.Error() == "" {
		return unavailableReason
	}
	return err.Error()
}

// Selection is the service that yielded data together with that data.
type Selection struct {
	Service domain.ServiceItem
	cache.ServiceData
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRetryable
	outcomeExhausted
)

// candidates walks an ordered candidate list: the preferred service first, then
// every other known service in list order.
type candidates struct {
	list    []domain.ServiceItem
	next    int
	lastErr error
}

func newCandidates(preferred *domain.ServiceItem, services []domain.ServiceItem) *candidates {
	c := &candidates{}
	if preferred != nil {
		c.list = append(c.list, *preferred)
	}
	for _, s := range services {
		if preferred != nil && s.URL == preferred.URL {
			continue
		}
		c.list = append(c.list, s)
	}
	return c
}

func (c *candidates) advance() (domain.ServiceItem, bool) {
	if c.next >= len(c.list) {
		return domain.ServiceItem{}, false
	}
	s := c.list[c.next]
	c.next++
	return s, true
}

// AvailableServiceData returns the data of the first candidate that can be fetched,
// starting with preferred. Every failed candidate is marked DOWN. When all candidates
// fail the error wraps domain.ErrNoAvailableService and the last observed failure.
func (r *Registry) AvailableServiceData(ctx context.Context, preferred *domain.ServiceItem) (Selection, error) {
	cands := newCandidates(preferred, r.Services())

	for {
		svc, ok := cands.advance()
		state := outcomeExhausted
		var sel Selection
		if ok {
			sel, state = r.try(ctx, svc, cands)
		}

		switch state {
		case outcomeSuccess:
			return sel, nil
		case outcomeRetryable:
			continue
		case outcomeExhausted:
			if cands.lastErr == nil {
				return Selection{}, domain.ErrNoAvailableService
			}
			return Selection{}, fmt.Errorf("%w: %w", domain.ErrNoAvailableService, cands.lastErr)
		}
	}
}

func (r *Registry) try(ctx context.Context, svc domain.ServiceItem, cands *candidates) (Selection, outcome) {
	data, err := r.cache.ServiceData(ctx, svc)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			cands.lastErr = err
			return Selection{}, outcomeExhausted
		}
		cands.lastErr = err
		r.updateStatus(svc.URL, domain.StatusDown, true, failureReason(err))
		r.log.Errorf("Service %s failed, trying next: %v", svc.Name, err)
		return Selection{}, outcomeRetryable
	}

	r.updateStatus(svc.URL, domain.StatusUp, false, "")
	svc.Status, svc.Disabled, svc.Reason = domain.StatusUp, false, ""
	r.selectIfChanged(svc)
	return Selection{Service: svc, ServiceData: data}, outcomeSuccess
}

func (r *Registry) selectIfChanged(svc domain.ServiceItem) {
	r.mu.Lock()
	changed := r.current == nil || r.current.URL != svc.URL
	if changed {
		s := svc
		r.current = &s
	}
	r.mu.Unlock()

	if changed {
		r.persistSelection(svc)
		r.log.Infof("Current service is now %s", svc.Name)
	}
}
