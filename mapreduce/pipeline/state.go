package pipeline

// State is the stage a pipeline run has reached. A run only moves forward:
// Idle, Mapping, Shuffling, Reducing, then Done, or Aborted from any stage
// that failed or was cancelled.
type State int

const (
	Idle State = iota
	Mapping
	Shuffling
	Reducing
	Done
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Mapping:
		return "mapping"
	case Shuffling:
		return "shuffling"
	case Reducing:
		return "reducing"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Done || s == Aborted
}
