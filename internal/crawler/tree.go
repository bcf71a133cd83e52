package crawler

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// linkTree records discovery provenance: which URL's page led to which
// child URLs. Keys and children are canonical URL strings (domain-only
// for roots, domain+path for jobs), never object references, so the
// tree cannot form ownership cycles.
//
// Invariants: every URL that appears as a child is also registered as a
// key, possibly with an empty child set, and every URL is adopted under
// at most one parent, at first discovery. Registration and adoption
// happen in one critical section, so the tree is a forest at every
// observable point; render fails loudly if either invariant is ever
// violated.
type linkTree struct {
	mu       sync.RWMutex
	children map[string]map[string]struct{}
}

func newLinkTree() linkTree {
	return linkTree{children: make(map[string]map[string]struct{})}
}

// register ensures key exists in the tree with at least an empty child set.
func (t *linkTree) register(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.children[key]; !ok {
		t.children[key] = make(map[string]struct{})
	}
}

// adopt registers child under parent. A child already in the tree keeps
// its original parent and adopt is a no-op, so self-links and mutual
// links between pages never add an edge and the tree stays a forest.
// It reports whether the parent was registered; adoption under an
// unregistered parent is refused, with no side effect, so the caller
// can surface the invariant violation.
func (t *linkTree) adopt(parent, child string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	set, ok := t.children[parent]
	if !ok {
		return false
	}
	if _, exists := t.children[child]; exists {
		return true
	}
	t.children[child] = make(map[string]struct{})
	set[child] = struct{}{}
	return true
}

// render writes the discovery tree depth-first to w, starting from the
// given roots. At each level the child-bearing nodes come first, each
// followed by its subtree indented one space deeper; the childless
// siblings follow space-joined on a single line. Roots render their full
// URL; deeper nodes render only their path, the domain being established
// by the root line.
//
// The read lock is held for the duration of the walk. Rendering touches
// no other registry and performs no I/O that can block on the crawl, so
// a concurrent Start only waits on map writes, never on the network.
func (t *linkTree) render(w io.Writer, roots []string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.renderLevel(w, 0, roots, make(map[string]struct{}, len(t.children)))
}

// renderLevel renders one sibling group at the given depth. visited
// holds every key rendered so far: reaching a key twice means an edge
// was duplicated or cycled, and the walk stops instead of recursing
// forever.
func (t *linkTree) renderLevel(w io.Writer, depth int, siblings []string, visited map[string]struct{}) error {
	sorted := append([]string(nil), siblings...)
	sort.Strings(sorted)

	indent := strings.Repeat(" ", depth)

	var childless []string
	type childed struct {
		key  string
		kids []string
	}
	var withKids []childed

	for _, key := range sorted {
		if _, seen := visited[key]; seen {
			return &Error{Kind: KindTreeCorrupt, URL: key}
		}
		visited[key] = struct{}{}

		kids, ok := t.children[key]
		if !ok {
			// A linked URL with no registry entry means registration was
			// skipped somewhere; the tree can no longer be trusted.
			return &Error{Kind: KindTreeCorrupt, URL: key}
		}
		if len(kids) == 0 {
			childless = append(childless, renderKey(key, depth))
			continue
		}
		flat := make([]string, 0, len(kids))
		for kid := range kids {
			flat = append(flat, kid)
		}
		withKids = append(withKids, childed{key: key, kids: flat})
	}

	for _, node := range withKids {
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, renderKey(node.key, depth)); err != nil {
			return err
		}
		if err := t.renderLevel(w, depth+1, node.kids, visited); err != nil {
			return err
		}
	}

	if len(childless) > 0 {
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, strings.Join(childless, " ")); err != nil {
			return err
		}
	}

	return nil
}

// renderKey renders a tree key for display: the full URL at the root
// level, the path alone below it.
func renderKey(key string, depth int) string {
	if depth == 0 {
		return key
	}
	u, err := url.Parse(key)
	if err != nil {
		return key
	}
	return u.Path
}
