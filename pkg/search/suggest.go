package search

import (
	"sync"

	"github.com/matst80/slask-parts/pkg/types"
)

// AutoSuggest keeps a word trie over product names and part numbers.
type AutoSuggest struct {
	mu        sync.RWMutex
	tokenizer *Tokenizer
	trie      *Trie
	words     map[types.ProductId]TokenList
}

func NewAutoSuggest(tokenizer *Tokenizer) *AutoSuggest {
	return &AutoSuggest{
		tokenizer: tokenizer,
		trie:      NewTrie(),
		words:     make(map[types.ProductId]TokenList),
	}
}

func (a *AutoSuggest) itemTokens(item *types.Product) TokenList {
	ret := a.tokenizer.Tokenize(item.Name)
	if part := NormalizeWord(item.PartNumber); part != "" {
		ret.AddToken(part)
	}
	return ret
}

// InsertItem replaces any words previously indexed for the item.
func (a *AutoSuggest) InsertItem(item *types.Product) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removeUnsafe(item.Id)
	if item.Deleted {
		return
	}
	tokens := a.itemTokens(item)
	for _, token := range tokens {
		if len(token) > 1 {
			a.trie.Insert(string(token))
		}
	}
	a.words[item.Id] = tokens
}

func (a *AutoSuggest) RemoveItem(id types.ProductId) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.removeUnsafe(id)
}

func (a *AutoSuggest) removeUnsafe(id types.ProductId) {
	tokens, ok := a.words[id]
	if !ok {
		return
	}
	for _, token := range tokens {
		if len(token) > 1 {
			a.trie.Remove(string(token))
		}
	}
	delete(a.words, id)
}

// Suggest completes the last word of text.
func (a *AutoSuggest) Suggest(text string, limit int) []Match {
	tokens := a.tokenizer.Tokenize(text)
	if len(tokens) == 0 {
		return []Match{}
	}
	a.mu.RLock()
	matches := a.trie.FindMatches(string(tokens[len(tokens)-1]))
	a.mu.RUnlock()
	if matches == nil {
		return []Match{}
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
