// Package keyword extracts representative keywords from chunk text.
package keyword

import (
	"fmt"
	"sort"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
	unicodetokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

const minTermLength = 3

// Extractor produces frequency-ranked keywords from text using a bleve
// analysis chain (unicode tokenizer, lowercase, English stopword filter).
type Extractor struct {
	tokenizer  analysis.Tokenizer
	lowercase  *lowercase.LowerCaseFilter
	stopFilter *stop.StopTokensFilter
}

// NewExtractor creates a keyword extractor with English stopwords.
func NewExtractor() (*Extractor, error) {
	stopMap := analysis.NewTokenMap()
	if err := stopMap.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, fmt.Errorf("load stopwords: %w", err)
	}
	return &Extractor{
		tokenizer:  unicodetokenizer.NewUnicodeTokenizer(),
		lowercase:  lowercase.NewLowerCaseFilter(),
		stopFilter: stop.NewStopTokensFilter(stopMap),
	}, nil
}

// Extract returns up to max keywords for text, most frequent first.
// Ties are broken alphabetically for deterministic output. Terms shorter
// than three characters and purely numeric terms are skipped.
func (e *Extractor) Extract(text string, max int) []string {
	if text == "" || max <= 0 {
		return nil
	}
	stream := e.tokenizer.Tokenize([]byte(text))
	stream = e.lowercase.Filter(stream)
	stream = e.stopFilter.Filter(stream)

	counts := make(map[string]int)
	for _, tok := range stream {
		term := string(tok.Term)
		if len(term) < minTermLength || isNumeric(term) {
			continue
		}
		counts[term]++
	}
	if len(counts) == 0 {
		return nil
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if max > len(terms) {
		max = len(terms)
	}
	return terms[:max]
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}
