// Package trie provides a case-insensitive prefix index over a live word set.
// It is built for incremental use: words are inserted when they enter play and
// removed when they leave, with per-node counts so removal prunes dead
// branches in O(len(word)).
package trie

import (
	"sort"
	"strings"
)

// PositionedRef is an optional live reference carried by an entry. Entries
// without one still participate in prefix search but are skipped by the
// position-based queries.
type PositionedRef interface {
	Position() (x, y float64)
}

// Entry is a terminal payload: the indexed text plus an optional positioned
// reference to the live object it describes.
type Entry struct {
	Text string
	Ref  PositionedRef
}

type node struct {
	children  map[rune]*node
	terminal  bool
	entry     Entry
	passCount int
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

type Trie struct {
	root *node
}

func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert indexes an entry under its lowercased text. Re-inserting the same
// text overwrites the terminal payload but still bumps counts along the path:
// the index counts occurrences, not distinct words. Pair Remove with Insert
// for a true replace.
func (t *Trie) Insert(e Entry) {
	n := t.root
	for _, ch := range strings.ToLower(e.Text) {
		child, ok := n.children[ch]
		if !ok {
			child = newNode()
			n.children[ch] = child
		}
		n = child
		n.passCount++
	}
	n.terminal = true
	n.entry = e
}

// Remove unindexes one occurrence of text. If the text is not terminal here
// this is a no-op. Counts are decremented along the whole path; pruning stops
// at the first node that is still terminal, still counted, or still has
// children.
func (t *Trie) Remove(text string) {
	text = strings.ToLower(text)

	type step struct {
		parent *node
		ch     rune
	}
	path := make([]step, 0, len(text))

	n := t.root
	for _, ch := range text {
		child, ok := n.children[ch]
		if !ok {
			return
		}
		path = append(path, step{parent: n, ch: ch})
		n = child
	}
	if !n.terminal {
		return
	}
	n.terminal = false
	n.entry = Entry{}

	prune := true
	for i := len(path) - 1; i >= 0; i-- {
		child := path[i].parent.children[path[i].ch]
		child.passCount--
		if prune && child.passCount <= 0 && !child.terminal && len(child.children) == 0 {
			delete(path[i].parent.children, path[i].ch)
		} else {
			prune = false
		}
	}
}

func (t *Trie) descend(prefix string) *node {
	n := t.root
	for _, ch := range strings.ToLower(prefix) {
		child, ok := n.children[ch]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

// WordsWithPrefix returns every indexed entry whose text starts with prefix,
// in child-traversal order. The result is not sorted.
func (t *Trie) WordsWithPrefix(prefix string) []Entry {
	n := t.descend(prefix)
	if n == nil {
		return nil
	}
	var out []Entry
	collect(n, &out)
	return out
}

func collect(n *node, out *[]Entry) {
	if n.terminal {
		*out = append(*out, n.entry)
	}
	for _, child := range n.children {
		collect(child, out)
	}
}

// BestMatch returns the most urgent entry matching prefix: among entries with
// a positioned reference, the one furthest down the field. When no match
// carries a position an arbitrary match is returned. The second return is
// false when nothing matches.
func (t *Trie) BestMatch(prefix string) (Entry, bool) {
	matches := t.WordsWithPrefix(prefix)
	if len(matches) == 0 {
		return Entry{}, false
	}

	best := -1
	var bestY float64
	for i, m := range matches {
		if m.Ref == nil {
			continue
		}
		_, y := m.Ref.Position()
		if best == -1 || y > bestY {
			best, bestY = i, y
		}
	}
	if best == -1 {
		return matches[0], true
	}
	return matches[best], true
}

// UrgentWords returns every positioned entry at or past dangerY, most urgent
// (furthest down) first.
func (t *Trie) UrgentWords(dangerY float64) []Entry {
	var urgent []Entry
	collectUrgent(t.root, dangerY, &urgent)
	sort.Slice(urgent, func(i, j int) bool {
		_, yi := urgent[i].Ref.Position()
		_, yj := urgent[j].Ref.Position()
		return yi > yj
	})
	return urgent
}

func collectUrgent(n *node, dangerY float64, out *[]Entry) {
	if n.terminal && n.entry.Ref != nil {
		if _, y := n.entry.Ref.Position(); y >= dangerY {
			*out = append(*out, n.entry)
		}
	}
	for _, child := range n.children {
		collectUrgent(child, dangerY, out)
	}
}

// CountByInitial returns how many indexed occurrences start with the given
// letter.
func (t *Trie) CountByInitial(ch rune) int {
	n := t.descend(string(ch))
	if n == nil {
		return 0
	}
	return n.passCount
}

// Initials returns the occurrence count for every first letter currently in
// the index.
func (t *Trie) Initials() map[rune]int {
	counts := make(map[rune]int, len(t.root.children))
	for ch, child := range t.root.children {
		counts[ch] = child.passCount
	}
	return counts
}
