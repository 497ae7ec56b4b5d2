package mappings

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

const walkCacheSize = 4096

// Hierarchy maps an intermediary class name to its immediate supertypes in
// declared order (super class first, then interfaces).
type Hierarchy struct {
	edges map[string][]string
	walks *lru.Cache[string, []string]
}

// NewHierarchy wraps an edge map. The map must not be modified afterwards.
func NewHierarchy(edges map[string][]string) (*Hierarchy, error) {
	if edges == nil {
		edges = map[string][]string{}
	}
	walks, err := lru.New[string, []string](walkCacheSize)
	if err != nil {
		return nil, err
	}
	return &Hierarchy{edges: edges, walks: walks}, nil
}

// Edges returns the underlying edge map.
func (h *Hierarchy) Edges() map[string][]string { return h.edges }

// Len returns the number of classes with at least one recorded supertype.
func (h *Hierarchy) Len() int { return len(h.edges) }

// Walk returns start followed by every reachable supertype in depth-first
// preorder. Each class appears once even if the graph has cycles. The
// returned slice is shared and must not be modified.
func (h *Hierarchy) Walk(start string) []string {
	start = Unwrap(start)
	if cached, ok := h.walks.Get(start); ok {
		return cached
	}
	var out []string
	visited := make(map[string]struct{})
	var visit func(string)
	visit = func(name string) {
		if _, seen := visited[name]; seen {
			return
		}
		visited[name] = struct{}{}
		out = append(out, name)
		for _, next := range h.edges[name] {
			visit(next)
		}
	}
	visit(start)
	h.walks.Add(start, out)
	return out
}
