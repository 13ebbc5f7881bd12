package keyword

import (
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis/tokenizer/character"
)

// whitespaceTokenizer splits on Unicode whitespace only. Case and punctuation
// are preserved, so "Attention," and "attention" are different terms.
var whitespaceTokenizer = character.NewCharacterTokenizer(func(r rune) bool {
	return !unicode.IsSpace(r)
})

// Tokenize splits text into terms. Chunks and queries must go through the same
// function for BM25 scores to be meaningful.
func Tokenize(text string) []string {
	stream := whitespaceTokenizer.Tokenize([]byte(text))
	terms := make([]string, len(stream))
	for i, tok := range stream {
		terms[i] = string(tok.Term)
	}
	return terms
}
