package search

import (
	"slices"
	"strings"
	"unicode"
)

type Token string

type Tokenizer struct {
	MaxTokens int
}

type TokenList []Token

func (t *TokenList) AddToken(token Token) {
	if slices.Contains(*t, token) {
		return
	}
	*t = append(*t, token)
}

var commonIssues = map[rune]rune{
	'ö': 'o',
	'ä': 'a',
	'å': 'a',
	'é': 'e',
	'è': 'e',
	'ê': 'e',
	'ë': 'e',
	'ï': 'i',
	'î': 'i',
	'ô': 'o',
	'ü': 'u',
	'û': 'u',
	'ÿ': 'y',
	'ç': 'c',
	'ñ': 'n',
	'ß': 's',
	'æ': 'a',
	'ø': 'o',
	'Ø': 'o',
	'µ': 'u',
	'Ω': 'o',
}

// NormalizeWord lower cases and keeps letters, digits and the dash used in part numbers.
func NormalizeWord(text string) Token {
	ret := make([]rune, 0, len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			l := unicode.ToLower(r)
			if replacement, ok := commonIssues[l]; ok {
				l = replacement
			}
			ret = append(ret, l)
		}
	}
	return Token(strings.Trim(string(ret), "-"))
}

func isSeparator(chr rune) bool {
	switch chr {
	case ' ', '\n', '\t', ',', ':', '.', '!', '?', ';', '(', ')', '[', ']', '{', '}', '"', '\'', '/':
		return true
	}
	return false
}

func SplitWords(text string, onWord func(word string, count int, last bool) bool) {
	count := 0
	lastSplit := 0
	for idx, chr := range text {
		if isSeparator(chr) {
			if idx > lastSplit {
				if !onWord(text[lastSplit:idx], count, false) {
					return
				}
				count++
			}
			lastSplit = idx + len(string(chr))
		}
	}
	if lastSplit < len(text) {
		onWord(text[lastSplit:], count, true)
	}
}

// Tokenize returns the unique normalized words of text, at most MaxTokens of them.
func (t *Tokenizer) Tokenize(text string) TokenList {
	ret := make(TokenList, 0)
	SplitWords(text, func(word string, count int, last bool) bool {
		if normalized := NormalizeWord(word); len(normalized) > 0 {
			ret.AddToken(normalized)
		}
		return t.MaxTokens <= 0 || len(ret) < t.MaxTokens
	})
	return ret
}
