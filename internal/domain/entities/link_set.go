package entities

// LinkSet is the ordered, append-only collection of object files destined
// for the final link. It is owned by a single build; stages hand object paths
// back and the orchestrator folds them in.
type LinkSet struct {
	paths []string
	seen  map[string]struct{}
}

// NewLinkSet creates an empty link set.
func NewLinkSet() *LinkSet {
	return &LinkSet{seen: make(map[string]struct{})}
}

// Append adds path unless it is already present.
// Returns false when the path was a duplicate.
func (l *LinkSet) Append(path string) bool {
	if l.seen == nil {
		l.seen = make(map[string]struct{})
	}
	if _, dup := l.seen[path]; dup {
		return false
	}
	l.seen[path] = struct{}{}
	l.paths = append(l.paths, path)
	return true
}

// Len returns the number of object paths.
func (l *LinkSet) Len() int {
	return len(l.paths)
}

// Paths returns a copy of the object paths in append order.
func (l *LinkSet) Paths() []string {
	out := make([]string, len(l.paths))
	copy(out, l.paths)
	return out
}
