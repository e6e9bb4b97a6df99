package search

import (
	"cmp"
	"slices"
)

type Trie struct {
	Root *Node
}

type Node struct {
	Children map[rune]*Node
	Count    int
}

type Match struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func NewTrie() *Trie {
	return &Trie{
		Root: &Node{
			Children: make(map[rune]*Node),
		},
	}
}

func (t *Trie) Insert(word string) {
	node := t.Root
	for _, r := range word {
		if _, ok := node.Children[r]; !ok {
			node.Children[r] = &Node{
				Children: make(map[rune]*Node),
			}
		}
		node = node.Children[r]
	}
	node.Count++
}

// Remove decrements the word count and prunes empty branches.
func (t *Trie) Remove(word string) {
	path := make([]*Node, 0, len(word)+1)
	runes := []rune(word)
	node := t.Root
	path = append(path, node)
	for _, r := range runes {
		next, ok := node.Children[r]
		if !ok {
			return
		}
		node = next
		path = append(path, node)
	}
	if node.Count == 0 {
		return
	}
	node.Count--
	for i := len(runes) - 1; i >= 0; i-- {
		child := path[i+1]
		if child.Count > 0 || len(child.Children) > 0 {
			break
		}
		delete(path[i].Children, runes[i])
	}
}

func (t *Trie) Search(word string) bool {
	node := t.Root
	for _, r := range word {
		if _, ok := node.Children[r]; !ok {
			return false
		}
		node = node.Children[r]
	}
	return node.Count > 0
}

// FindMatches lists the words starting with prefix, most frequent first.
func (t *Trie) FindMatches(prefix string) []Match {
	node := t.Root
	for _, r := range prefix {
		if _, ok := node.Children[r]; !ok {
			return nil
		}
		node = node.Children[r]
	}
	matches := t.findMatches(node, prefix, nil)
	slices.SortFunc(matches, func(a, b Match) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return cmp.Compare(a.Word, b.Word)
	})
	return matches
}

func (t *Trie) findMatches(node *Node, prefix string, matches []Match) []Match {
	if node.Count > 0 {
		matches = append(matches, Match{Word: prefix, Count: node.Count})
	}
	for r, child := range node.Children {
		matches = t.findMatches(child, prefix+string(r), matches)
	}
	return matches
}
