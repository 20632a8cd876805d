package ratelimit

import (
	"context"
	"sync"
	"time"
)

type domainState struct {
	mu          sync.Mutex
	lastRequest time.Time
}

// DomainLimiter serializes requests per origin domain and enforces a minimum
// interval between consecutive requests to the same domain. The per-domain
// lock is held across the politeness delay, so at most one request per domain
// is in flight at a time.
type DomainLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	domains     map[string]*domainState
}

// NewDomainLimiter creates a DomainLimiter with the given minimum interval
// between requests to the same domain.
func NewDomainLimiter(minInterval time.Duration) *DomainLimiter {
	return &DomainLimiter{
		minInterval: minInterval,
		domains:     make(map[string]*domainState),
	}
}

func (l *DomainLimiter) state(domain string) *domainState {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.domains[domain]
	if !ok {
		st = &domainState{}
		l.domains[domain] = st
	}
	return st
}

// Acquire blocks until the domain may be requested again, then marks the
// domain as requested and returns a release function. The caller must invoke
// release once the request has completed.
func (l *DomainLimiter) Acquire(ctx context.Context, domain string) (func(), error) {
	st := l.state(domain)
	st.mu.Lock()

	elapsed := time.Since(st.lastRequest)
	if wait := l.minInterval - elapsed; wait > 0 {
		select {
		case <-ctx.Done():
			st.mu.Unlock()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	st.lastRequest = time.Now()

	return func() { st.mu.Unlock() }, nil
}
