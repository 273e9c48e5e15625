package pipeline

import (
	"errors"
	"fmt"
)

const (
	DefaultMappers  = 4
	DefaultReducers = 2
)

var (
	ErrInvalidConfig   = errors.New("invalid pipeline config")
	ErrStorageOverflow = errors.New("input exceeds store capacity")
	ErrAlreadyRun      = errors.New("pipeline has already been run")
)

// Config fixes the shape of a run before it starts.
type Config struct {
	// Mappers is the degree of map-phase parallelism.
	Mappers int
	// Reducers is the degree of reduce-phase parallelism.
	Reducers int
	// Capacity bounds the number of records the intermediate store may hold.
	// Zero means unbounded.
	Capacity int
}

func DefaultConfig() Config {
	return Config{
		Mappers:  DefaultMappers,
		Reducers: DefaultReducers,
	}
}

// Validate checks the pool sizes and capacity.
func (c Config) Validate() error {
	if c.Mappers < 1 {
		return fmt.Errorf("%w: mapper count %d, need at least 1", ErrInvalidConfig, c.Mappers)
	}
	if c.Reducers < 1 {
		return fmt.Errorf("%w: reducer count %d, need at least 1", ErrInvalidConfig, c.Reducers)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("%w: negative capacity %d", ErrInvalidConfig, c.Capacity)
	}
	return nil
}

// CheckCapacity fails when the worst case of one record per token would not fit.
func (c Config) CheckCapacity(tokens int) error {
	if c.Capacity > 0 && tokens > c.Capacity {
		return fmt.Errorf("%w: %d tokens, capacity %d", ErrStorageOverflow, tokens, c.Capacity)
	}
	return nil
}
