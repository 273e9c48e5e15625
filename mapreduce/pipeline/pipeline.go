package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"wordcount/mapreduce/types"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Pipeline is one word-count run. It owns the intermediate and final stores
// of the run and can be run only once.
type Pipeline struct {
	cfg    Config
	logger *zap.Logger

	mutex        sync.Mutex
	state        State
	intermediate *IntermediateStore
	final        *FinalStore

	// instrumentation for tests
	mapperDone   func(worker int)
	shuffleStart func()
	reducerDone  func(worker int)
}

// New creates an idle pipeline. The pool sizes in cfg are fixed for the run.
func New(cfg Config, logger *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		state:  Idle,
	}, nil
}

// Count runs a fresh pipeline over tokens.
func Count(ctx context.Context, tokens []string, cfg Config, logger *zap.Logger) (*Result, error) {
	p, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, tokens)
}

func (p *Pipeline) State() State {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mutex.Lock()
	from := p.state
	p.state = s
	p.mutex.Unlock()
	p.logger.Debug("state transition", zap.Stringer("from", from), zap.Stringer("to", s))
}

// abort discards the stores of a failed run.
func (p *Pipeline) abort(stage State, err error) error {
	p.mutex.Lock()
	p.intermediate = nil
	p.final = nil
	p.mutex.Unlock()
	p.setState(Aborted)
	p.logger.Warn("run aborted", zap.Stringer("stage", stage), zap.Error(err))
	return fmt.Errorf("%s: %w", stage, err)
}

// Run counts the words of tokens. tokens is only read. Errors in the
// configuration or the capacity check are reported before any worker starts
// and leave the pipeline idle; a failure or cancellation once workers run
// aborts the pipeline and no partial result is returned.
func (p *Pipeline) Run(ctx context.Context, tokens []string) (*Result, error) {
	p.mutex.Lock()
	if p.state != Idle {
		p.mutex.Unlock()
		return nil, ErrAlreadyRun
	}
	if err := p.cfg.CheckCapacity(len(tokens)); err != nil {
		p.mutex.Unlock()
		return nil, err
	}
	p.state = Mapping
	p.intermediate = NewIntermediateStore(len(tokens))
	intermediate := p.intermediate
	p.mutex.Unlock()

	stats := Stats{Tokens: len(tokens), Mappers: p.cfg.Mappers, Reducers: p.cfg.Reducers}
	p.logger.Info("starting run",
		zap.Int("tokens", len(tokens)), zap.Int("mappers", p.cfg.Mappers), zap.Int("reducers", p.cfg.Reducers))

	// map
	start := time.Now()
	skipped, err := runMappers(ctx, tokens, p.cfg.Mappers, intermediate, p.logger.Named("mapper"), p.mapperDone)
	if err != nil {
		return nil, p.abort(Mapping, err)
	}
	stats.Map = time.Since(start)
	stats.Skipped = skipped

	// shuffle
	if err := ctx.Err(); err != nil {
		return nil, p.abort(Mapping, err)
	}
	p.setState(Shuffling)
	if p.shuffleStart != nil {
		p.shuffleStart()
	}
	start = time.Now()
	records := intermediate.Drain()
	stats.Records = len(records)
	grouped := p.shuffle(records)
	stats.Unique = len(grouped)
	stats.Shuffle = time.Since(start)

	// reduce
	if err := ctx.Err(); err != nil {
		return nil, p.abort(Shuffling, err)
	}
	p.mutex.Lock()
	p.final = NewFinalStore(len(grouped))
	final := p.final
	p.mutex.Unlock()
	p.setState(Reducing)
	start = time.Now()
	if err := runReducers(ctx, grouped, p.cfg.Reducers, final, p.logger.Named("reducer"), p.reducerDone); err != nil {
		return nil, p.abort(Reducing, err)
	}
	stats.Reduce = time.Since(start)

	result := newResult(final.Sorted(), stats)
	p.setState(Done)
	p.logger.Info("run completed",
		zap.Int("words", result.Len()), zap.Int("total", result.Total()), zap.Int("skipped", stats.Skipped),
		zap.Duration("map", stats.Map), zap.Duration("shuffle", stats.Shuffle), zap.Duration("reduce", stats.Reduce))
	return result, nil
}

// shuffle groups the drained records, logging the grouped view at debug level.
func (p *Pipeline) shuffle(records []types.Record) []types.Record {
	logger := p.logger.Named("shuffle")
	grouped := Shuffle(records)
	if ce := logger.Check(zapcore.DebugLevel, "after shuffle"); ce != nil {
		ce.Write(zap.String("groups", groupedView(grouped)))
	}
	logger.Info("shuffle phase completed",
		zap.Int("records", len(records)), zap.Int("unique", len(grouped)))
	return grouped
}

// Limits of the debug view; larger inputs are summarized.
const (
	maxViewGroups = 32
	maxViewOnes   = 8
)

// groupedView renders ("word", [1, 1]) per group. At most maxViewGroups groups
// are shown, each with at most maxViewOnes ones followed by the group size.
func groupedView(grouped []types.Record) string {
	var b strings.Builder
	for i, rec := range grouped {
		if i == maxViewGroups {
			fmt.Fprintf(&b, " ... and %d more groups", len(grouped)-i)
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "(%q, [1", rec.Word)
		for range min(rec.Count, maxViewOnes) - 1 {
			b.WriteString(", 1")
		}
		if rec.Count > maxViewOnes {
			fmt.Fprintf(&b, ", ... (%d)", rec.Count)
		}
		b.WriteString("])")
	}
	return b.String()
}
