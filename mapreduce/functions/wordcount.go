package functions

import (
	"strings"
	"unicode"

	"wordcount/mapreduce/types"
)

// Clean keeps only the letters and digits of raw, lowercased, in their original order.
// An empty result means the token carries no word and should be skipped.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// WordCountMap turns one raw token into its count-1 record.
// ok is false when the token cleans to nothing.
func WordCountMap(token string) (rec types.Record, ok bool) {
	word := Clean(token)
	if word == "" {
		return types.Record{}, false
	}
	return types.Record{Word: word, Count: 1}, true
}

// WordCountReduce folds an incoming grouped count into an existing total.
func WordCountReduce(total int, incoming types.Record) int {
	return total + incoming.Count
}
