package matchgrid

import "encoding/binary"

// MatchOutputTracker remembers which matches have been reported, so that a
// match found through several hash tables is emitted once.
type MatchOutputTracker struct {
	seen map[string]struct{}
	buf  []byte
}

// NewMatchOutputTracker creates an empty tracker.
func NewMatchOutputTracker() *MatchOutputTracker {
	return &MatchOutputTracker{seen: make(map[string]struct{})}
}

func (t *MatchOutputTracker) key(m MatchLite) []byte {
	buf := binary.AppendUvarint(t.buf[:0], uint64(len(m)))
	for _, ref := range m {
		buf = binary.AppendUvarint(buf, ref)
	}
	t.buf = buf
	return buf
}

// NoteOutputMatch records m as reported. Noting a match twice is a no-op.
func (t *MatchOutputTracker) NoteOutputMatch(m MatchLite) {
	k := t.key(m)
	if _, ok := t.seen[string(k)]; !ok {
		t.seen[string(k)] = struct{}{}
	}
}

// MatchHasBeenOutput reports whether m was noted before.
func (t *MatchOutputTracker) MatchHasBeenOutput(m MatchLite) bool {
	_, ok := t.seen[string(t.key(m))]
	return ok
}

// Len returns the number of distinct matches noted.
func (t *MatchOutputTracker) Len() int {
	return len(t.seen)
}
