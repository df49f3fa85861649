// Package trie implements the prefix index over poll titles. Keys are
// lowercased before traversal; each terminal node holds the records whose
// title ends there, keyed by record id and kept in insertion order.
package trie

import (
	"sort"
	"strings"
)

type node[T any] struct {
	children map[rune]*node[T]
	ids      []int64     // insertion order of records attached at this node
	records  map[int64]T // record id -> payload
}

func newNode[T any]() *node[T] {
	return &node[T]{children: make(map[rune]*node[T])}
}

// Trie maps lowercased titles to records, queryable by prefix. It is not
// internally synchronized; the owning service must serialize mutations
// against searches.
type Trie[T any] struct {
	root *node[T]
	id   func(T) int64
	size int
}

// New creates an empty trie. The id function extracts the stable record
// identifier used to deduplicate inserts and to disambiguate removals.
func New[T any](id func(T) int64) *Trie[T] {
	return &Trie[T]{root: newNode[T](), id: id}
}

// Insert indexes rec under the lowercased title. Re-inserting the same id at
// the same title overwrites the stored payload without creating a duplicate
// and without changing its position in the node's insertion order. An empty
// title attaches the record at the root.
func (t *Trie[T]) Insert(title string, rec T) {
	n := t.root
	for _, r := range strings.ToLower(title) {
		child, ok := n.children[r]
		if !ok {
			child = newNode[T]()
			n.children[r] = child
		}
		n = child
	}

	id := t.id(rec)
	if n.records == nil {
		n.records = make(map[int64]T)
	}
	if _, exists := n.records[id]; !exists {
		n.ids = append(n.ids, id)
		t.size++
	}
	n.records[id] = rec
}

// Search returns up to limit records whose title starts with the lowercased
// prefix. Collection below the prefix node is breadth-first, so records
// attached at shallower nodes come before records found deeper in the
// subtree; within a node, insertion order is preserved, and sibling branches
// are visited in sorted rune order. A prefix with no matching path, or a
// non-positive limit, yields an empty slice.
func (t *Trie[T]) Search(prefix string, limit int) []T {
	out := []T{}
	if limit <= 0 {
		return out
	}

	n := t.root
	for _, r := range strings.ToLower(prefix) {
		child, ok := n.children[r]
		if !ok {
			return out
		}
		n = child
	}

	queue := []*node[T]{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, id := range cur.ids {
			out = append(out, cur.records[id])
			if len(out) == limit {
				return out
			}
		}

		keys := make([]rune, 0, len(cur.children))
		for r := range cur.children {
			keys = append(keys, r)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, r := range keys {
			queue = append(queue, cur.children[r])
		}
	}
	return out
}

// Remove deletes the record with the given id from the node at the
// lowercased title. A path that does not exist, or an id not present at the
// terminal node, is a no-op. Nodes left with no children and no records are
// pruned on the walk back up.
func (t *Trie[T]) Remove(title string, id int64) {
	lower := strings.ToLower(title)

	path := []*node[T]{t.root}
	chars := make([]rune, 0, len(lower))
	n := t.root
	for _, r := range lower {
		child, ok := n.children[r]
		if !ok {
			return
		}
		n = child
		path = append(path, n)
		chars = append(chars, r)
	}

	if _, ok := n.records[id]; !ok {
		return
	}
	delete(n.records, id)
	for i, v := range n.ids {
		if v == id {
			n.ids = append(n.ids[:i], n.ids[i+1:]...)
			break
		}
	}
	t.size--

	for i := len(path) - 1; i > 0; i-- {
		cur := path[i]
		if len(cur.children) > 0 || len(cur.ids) > 0 {
			break
		}
		delete(path[i-1].children, chars[i-1])
	}
}

// Len reports the number of records currently indexed.
func (t *Trie[T]) Len() int {
	return t.size
}
