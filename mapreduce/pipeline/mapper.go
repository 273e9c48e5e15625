package pipeline

import (
	"context"
	"sync/atomic"

	"wordcount/mapreduce/functions"
	"wordcount/mapreduce/taskmgr"

	"go.uber.org/zap"
)

// checkEvery is how many items a worker handles between cancellation checks.
const checkEvery = 256

type mapperPool struct {
	store   *IntermediateStore
	skipped atomic.Int64
	logger  *zap.Logger
}

// handle cleans every token of the worker's slice in order and appends one
// record per non-empty word.
func (m *mapperPool) handle(ctx context.Context, worker int, slice []string) error {
	m.logger.Debug("mapper processing", zap.Int("mapper", worker), zap.Int("words", len(slice)))
	mapped, skipped := 0, 0
	for i, token := range slice {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rec, ok := functions.WordCountMap(token)
		if !ok {
			skipped++
			continue
		}
		m.store.Append(rec)
		mapped++
	}
	m.skipped.Add(int64(skipped))
	m.logger.Debug("mapper completed", zap.Int("mapper", worker), zap.Int("mapped", mapped), zap.Int("skipped", skipped))
	return nil
}

// runMappers partitions tokens over n workers and blocks until all are done.
func runMappers(ctx context.Context, tokens []string, n int, store *IntermediateStore, logger *zap.Logger, onDone func(int)) (skipped int, err error) {
	pool := &mapperPool{store: store, logger: logger}
	mgr := taskmgr.NewTaskManager(n, pool.handle, logger)
	mgr.SetHooks(nil, onDone)
	for worker, slice := range Partition(tokens, n) {
		if err := mgr.AddTask(worker, slice); err != nil {
			return 0, err
		}
	}
	if err := mgr.Run(ctx); err != nil {
		return 0, err
	}
	return int(pool.skipped.Load()), nil
}
