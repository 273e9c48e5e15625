package main

import (
	"context"
	"flag"
	"net"
	"time"

	"wordcount/mapreduce/pipeline"
	"wordcount/mapreduce/wire"
	"wordcount/rpc/server"
	"wordcount/utils"

	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type mux struct {
	capacity int
	timeout  time.Duration
	logger   *zap.Logger
}

// newMux serves requests of at most capacity words; a negative capacity is
// derived from host memory and 0 is unbounded.
func newMux(capacity int, timeout time.Duration, logger *zap.Logger) *mux {
	if capacity < 0 {
		var err error
		capacity, err = utils.MemoryCapacity()
		if err != nil {
			logger.Warn("cannot derive capacity from free memory, running unbounded", zap.Error(err))
		}
	}
	return &mux{capacity: capacity, timeout: timeout, logger: logger}
}

func main() {
	listenAddr := flag.String("listen", ":8080", "Address to serve count requests on")
	capacity := flag.Int("capacity", 0, "Maximum number of words per request, -1 derives it from free memory, 0 is unbounded")
	timeout := flag.Duration("timeout", time.Minute, "Abort a run after this long, 0 waits forever")
	recoverFromPanic := flag.Bool("recover", true, "Turn handler panics into error replies")
	verbose := flag.Bool("v", false, "Log every request and stage")
	flag.Parse()

	cfg := zap.NewDevelopmentConfig()
	if !*verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	m := newMux(*capacity, *timeout, logger)

	countServer := server.NewServer(logger)
	countServer.SetRecoverFromPanic(*recoverFromPanic)
	countServer.RegisterByMessage(&structpb.Struct{}, m.countRequest)

	listener, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		logger.Fatal("listen failed", zap.String("addr", *listenAddr), zap.Error(err))
	}
	logger.Info("starting count server",
		zap.String("addr", listener.Addr().String()), zap.Int("capacity", m.capacity), zap.Duration("timeout", m.timeout))
	if err := countServer.Serve(listener); err != nil {
		logger.Fatal("serve failed", zap.Error(err))
	}
}

// countRequest runs one fresh pipeline over the submitted words
func (m *mux) countRequest(ctx server.Context, req proto.Message) (proto.Message, error) {
	job, err := wire.DecodeJob(req.(*structpb.Struct))
	if err != nil {
		return nil, err
	}
	job.Config.Capacity = m.capacity
	logger := m.logger.With(zap.String("remote", ctx.Address))
	logger.Info("received count request",
		zap.Int("tokens", len(job.Tokens)), zap.Int("mappers", job.Config.Mappers), zap.Int("reducers", job.Config.Reducers))

	runCtx := context.Background()
	if m.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, m.timeout)
		defer cancel()
	}
	res, err := pipeline.Count(runCtx, job.Tokens, job.Config, logger)
	if err != nil {
		return nil, err
	}
	return wire.EncodeResult(res), nil
}
