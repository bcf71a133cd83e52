package crawler

import "sync"

// domainState is the per-domain on/off switch. Created on the first
// start command under the domain and never deleted; stop only clears
// the flag.
type domainState struct {
	crawling bool
}

// domainRegistry guards the domain states behind a reader/writer lock.
// Keys are domain-only URL strings.
type domainRegistry struct {
	mu      sync.RWMutex
	domains map[string]*domainState
}

func newDomainRegistry() domainRegistry {
	return domainRegistry{domains: make(map[string]*domainState)}
}

// isCrawling reports whether crawling is permitted under the domain.
// An unknown domain is not crawling.
func (r *domainRegistry) isCrawling(domain string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.domains[domain]
	return ok && state.crawling
}

// startCrawling sets the domain's flag, creating the state if absent.
func (r *domainRegistry) startCrawling(domain string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.domains[domain]
	if !ok {
		state = &domainState{}
		r.domains[domain] = state
	}
	state.crawling = true
}

// stopCrawling clears the domain's flag. It reports whether the domain
// was known; stopping an unknown domain is a no-op.
func (r *domainRegistry) stopCrawling(domain string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.domains[domain]
	if !ok {
		return false
	}
	state.crawling = false
	return true
}

// keys returns all registered domain-only URLs.
func (r *domainRegistry) keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.domains))
	for k := range r.domains {
		keys = append(keys, k)
	}
	return keys
}
