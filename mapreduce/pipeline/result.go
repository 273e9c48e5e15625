package pipeline

import (
	"bufio"
	"io"
	"iter"
	"slices"
	"strconv"
	"strings"
	"time"

	"wordcount/mapreduce/types"
	"wordcount/utils"
)

// Stats describes what a run did.
type Stats struct {
	Tokens   int // input tokens
	Skipped  int // tokens that cleaned to nothing
	Records  int // records emitted by the mappers
	Unique   int // distinct words after the shuffle
	Map      time.Duration
	Shuffle  time.Duration
	Reduce   time.Duration
	Mappers  int
	Reducers int
}

// Result is the final word count of a run, ordered by word. It is immutable.
type Result struct {
	records []types.Record
	stats   Stats
}

func newResult(records []types.Record, stats Stats) *Result {
	return &Result{records: records, stats: stats}
}

// Stats returns the statistics of the run that produced r.
func (r *Result) Stats() Stats {
	return r.stats
}

// Len returns the number of distinct words.
func (r *Result) Len() int {
	return len(r.records)
}

// Total returns the sum of every word count.
func (r *Result) Total() int {
	total := 0
	for _, rec := range r.records {
		total += rec.Count
	}
	return total
}

// Get returns the count of word.
func (r *Result) Get(word string) (int, bool) {
	i, found := slices.BinarySearchFunc(r.records, word, func(rec types.Record, w string) int {
		return strings.Compare(rec.Word, w)
	})
	if !found {
		return 0, false
	}
	return r.records[i].Count, true
}

// All iterates the words and their counts in ascending word order.
func (r *Result) All() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for _, rec := range r.records {
			if !yield(rec.Word, rec.Count) {
				return
			}
		}
	}
}

// Records returns a copy of the sorted records.
func (r *Result) Records() []types.Record {
	return slices.Clone(r.records)
}

// Map returns the counts keyed by word.
func (r *Result) Map() map[string]int {
	m := make(map[string]int, len(r.records))
	for _, rec := range r.records {
		m[rec.Word] = rec.Count
	}
	return m
}

// WriteTo renders one "word: count" line per word.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	return WriteRecords(w, r.records)
}

// WriteRecords renders one "word: count" line per record, in the given order.
func WriteRecords(w io.Writer, records []types.Record) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for _, rec := range records {
		n, err := bw.WriteString(rec.Word + ": " + strconv.Itoa(rec.Count) + "\n")
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, bw.Flush()
}

// Digest returns the MD5 of the rendered output. Two runs over the same input
// have the same digest whatever their pool sizes.
func (r *Result) Digest() (string, error) {
	return utils.HashWriterTo(r)
}
