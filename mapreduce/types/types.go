package types

// Record is a (word, count) pair flowing through the pipeline.
// Mappers emit it with Count 1, the shuffler and reducers only ever add to Count.
type Record struct {
	Word  string
	Count int
}
