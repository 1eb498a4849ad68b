package indexer

import "strings"

// Preprocess normalizes document text before chunking: surrounding
// whitespace is dropped and internal runs collapse to single spaces, so
// chunk spans stay stable across formatting-only edits.
func Preprocess(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
