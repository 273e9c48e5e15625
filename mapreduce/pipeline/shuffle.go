package pipeline

import (
	"slices"
	"strings"

	"wordcount/mapreduce/types"
)

// Shuffle groups records by word. It stable-sorts records in place by byte-wise
// word order, then folds every run of equal words into one record carrying the
// run's summed count. The result has strictly increasing words and the same
// total count as the input.
func Shuffle(records []types.Record) []types.Record {
	slices.SortStableFunc(records, func(a, b types.Record) int {
		return strings.Compare(a.Word, b.Word)
	})
	grouped := make([]types.Record, 0, len(records))
	for _, rec := range records {
		if n := len(grouped); n > 0 && grouped[n-1].Word == rec.Word {
			grouped[n-1].Count += rec.Count
			continue
		}
		grouped = append(grouped, rec)
	}
	return grouped
}
