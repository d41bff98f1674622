package explorer

import (
	"fmt"
	"sync"
)

type registryEntry struct {
	links    []string
	recorded bool
}

// Registry maps each processed domain to the distinct domains its page linked to.
// A domain is claimed before its fetch starts and recorded exactly once when it ends.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	order   []string
}

// Snapshot is a read-only copy of a Registry.
// Domains lists the recorded keys in the order they were recorded.
type Snapshot struct {
	Domains []string
	Links   map[string][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: map[string]*registryEntry{},
	}
}

// Contains reports whether domain has been claimed or recorded.
func (r *Registry) Contains(domain string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[domain]

	return ok
}

// Claim marks domain as in progress if nobody has claimed it yet.
// It returns false when the domain is already known.
func (r *Registry) Claim(domain string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[domain]; ok {
		return false
	}

	r.entries[domain] = &registryEntry{}

	return true
}

// Record stores the links of domain and returns them as stored:
// first occurrence order, no duplicates, no self-reference.
func (r *Registry) Record(domain string, links []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[domain]
	if ok && entry.recorded {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRecorded, domain)
	}

	if !ok {
		entry = &registryEntry{}
		r.entries[domain] = entry
	}

	entry.links = normalizeLinks(domain, links)
	entry.recorded = true
	r.order = append(r.order, domain)

	return cloneStrings(entry.links), nil
}

// Snapshot copies the recorded entries.
// Claims that were never recorded are not included.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Domains: cloneStrings(r.order),
		Links:   make(map[string][]string, len(r.order)),
	}

	for _, domain := range r.order {
		snap.Links[domain] = cloneStrings(r.entries[domain].links)
	}

	return snap
}

// Has reports whether domain is a key of the snapshot.
func (s Snapshot) Has(domain string) bool {
	_, ok := s.Links[domain]

	return ok
}

func normalizeLinks(owner string, links []string) []string {
	out := make([]string, 0, len(links))
	seen := make(map[string]bool, len(links))

	for _, link := range links {
		if link == owner || seen[link] {
			continue
		}

		seen[link] = true
		out = append(out, link)
	}

	return out
}

func cloneStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)

	return out
}
