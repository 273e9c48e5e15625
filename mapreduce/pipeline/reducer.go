package pipeline

import (
	"context"

	"wordcount/mapreduce/taskmgr"
	"wordcount/mapreduce/types"

	"go.uber.org/zap"
)

type reducerPool struct {
	store  *FinalStore
	logger *zap.Logger
}

// handle merges every grouped record of the worker's slice into the final store.
func (r *reducerPool) handle(ctx context.Context, worker int, slice []types.Record) error {
	r.logger.Debug("reducer processing", zap.Int("reducer", worker), zap.Int("groups", len(slice)))
	for i, rec := range slice {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		r.store.Merge(rec)
	}
	r.logger.Debug("reducer completed", zap.Int("reducer", worker), zap.Int("groups", len(slice)))
	return nil
}

// runReducers partitions the grouped records over n workers and blocks until all are done.
func runReducers(ctx context.Context, grouped []types.Record, n int, store *FinalStore, logger *zap.Logger, onDone func(int)) error {
	pool := &reducerPool{store: store, logger: logger}
	mgr := taskmgr.NewTaskManager(n, pool.handle, logger)
	mgr.SetHooks(nil, onDone)
	for worker, slice := range Partition(grouped, n) {
		if err := mgr.AddTask(worker, slice); err != nil {
			return err
		}
	}
	return mgr.Run(ctx)
}
