package main

import (
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"wordcount/mapreduce/pipeline"
	"wordcount/mapreduce/wire"
	"wordcount/rpc/server"
	"wordcount/utils"

	"go.uber.org/zap/zaptest"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestCountRequest(t *testing.T) {
	m := &mux{logger: zaptest.NewLogger(t)}
	req, err := wire.EncodeJob(wire.Job{
		Tokens: []string{"Hello", "world!", "hello", "WORLD"},
		Config: pipeline.Config{Mappers: 2, Reducers: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := m.countRequest(server.Context{Address: "test"}, req)
	if err != nil {
		t.Fatal(err)
	}
	records, err := wire.DecodeResult(resp.(*structpb.ListValue))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Word != "hello" || records[0].Count != 2 || records[1].Word != "world" || records[1].Count != 2 {
		t.Fatalf("records %v", records)
	}
}

func TestCountRequestCapacity(t *testing.T) {
	m := &mux{capacity: 2, logger: zaptest.NewLogger(t)}
	req, _ := wire.EncodeJob(wire.Job{Tokens: []string{"a", "b", "c"}, Config: pipeline.DefaultConfig()})
	if _, err := m.countRequest(server.Context{}, req); !errors.Is(err, pipeline.ErrStorageOverflow) {
		t.Fatalf("countRequest returned %v; expected ErrStorageOverflow", err)
	}
}

func TestCountRequestInvalidPools(t *testing.T) {
	m := &mux{logger: zaptest.NewLogger(t)}
	req, _ := wire.EncodeJob(wire.Job{Tokens: []string{"a"}, Config: pipeline.Config{Mappers: 0, Reducers: 1}})
	if _, err := m.countRequest(server.Context{}, req); !errors.Is(err, pipeline.ErrInvalidConfig) {
		t.Fatalf("countRequest returned %v; expected ErrInvalidConfig", err)
	}
}

func TestSubmitOverTheNetwork(t *testing.T) {
	m := &mux{timeout: time.Second, logger: zaptest.NewLogger(t)}
	s := server.NewServer(zaptest.NewLogger(t))
	s.RegisterByMessage(&structpb.Struct{}, m.countRequest)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer listener.Close()
	go s.Serve(listener)

	req, _ := wire.EncodeJob(wire.Job{Tokens: []string{"cat,", "dog.", "CAT", "Dog"}, Config: pipeline.Config{Mappers: 3, Reducers: 2}})
	resp, err := utils.SendSingleRequest(listener.Addr().String(), req, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	records, err := wire.DecodeResult(resp.(*structpb.ListValue))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Count != 2 || records[1].Count != 2 {
		t.Fatalf("records %v", records)
	}

	bad, _ := wire.EncodeJob(wire.Job{Config: pipeline.Config{Mappers: 1, Reducers: -1}})
	if _, err := utils.SendSingleRequest(listener.Addr().String(), bad, time.Second); err == nil || !strings.Contains(err.Error(), "reducer count") {
		t.Fatalf("SendSingleRequest returned %v; expected a reducer count error", err)
	}
}

func TestNewMuxCapacity(t *testing.T) {
	logger := zaptest.NewLogger(t)
	if m := newMux(0, time.Minute, logger); m.capacity != 0 {
		t.Fatalf("capacity %d; expected unbounded", m.capacity)
	}
	if m := newMux(5, time.Minute, logger); m.capacity != 5 {
		t.Fatalf("capacity %d; expected 5", m.capacity)
	}
	if m := newMux(-1, time.Minute, logger); m.capacity < 0 {
		t.Fatalf("capacity %d is negative", m.capacity)
	}
}
