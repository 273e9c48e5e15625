package pipeline

import (
	"maps"
	"slices"
	"sync"

	"wordcount/mapreduce/functions"
	"wordcount/mapreduce/types"
)

// IntermediateStore collects the records emitted by the mappers.
type IntermediateStore struct {
	mutex   sync.Mutex
	records []types.Record
}

func NewIntermediateStore(sizeHint int) *IntermediateStore {
	return &IntermediateStore{
		records: make([]types.Record, 0, sizeHint),
	}
}

// Append adds one record. It is safe for concurrent use.
func (s *IntermediateStore) Append(rec types.Record) {
	s.mutex.Lock()
	s.records = append(s.records, rec)
	s.mutex.Unlock()
}

func (s *IntermediateStore) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.records)
}

// Drain hands every record to the caller and leaves the store empty.
func (s *IntermediateStore) Drain() []types.Record {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	records := s.records
	s.records = nil
	return records
}

// FinalStore maps each word to its aggregate count.
type FinalStore struct {
	mutex  sync.Mutex
	counts map[string]int
}

func NewFinalStore(sizeHint int) *FinalStore {
	return &FinalStore{
		counts: make(map[string]int, sizeHint),
	}
}

// Merge adds rec.Count to the word's total, inserting the word if it is new.
// The lookup and the update happen under one lock.
func (f *FinalStore) Merge(rec types.Record) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if total, ok := f.counts[rec.Word]; ok {
		f.counts[rec.Word] = functions.WordCountReduce(total, rec)
		return
	}
	f.counts[rec.Word] = rec.Count
}

func (f *FinalStore) Get(word string) (int, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	count, ok := f.counts[word]
	return count, ok
}

func (f *FinalStore) Len() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.counts)
}

// Sorted returns the entries ordered by word.
func (f *FinalStore) Sorted() []types.Record {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	records := make([]types.Record, 0, len(f.counts))
	for _, word := range slices.Sorted(maps.Keys(f.counts)) {
		records = append(records, types.Record{Word: word, Count: f.counts[word]})
	}
	return records
}
