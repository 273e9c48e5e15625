// Package wire converts count jobs and their results to protobuf messages for
// the count service. A job travels as a google.protobuf.Struct
//
//	{"tokens": ["..."], "mappers": 4, "reducers": 2}
//
// and its result as a google.protobuf.ListValue of [word, count] pairs sorted
// by word.
package wire

import (
	"errors"
	"fmt"
	"math"

	"wordcount/mapreduce/pipeline"
	"wordcount/mapreduce/types"

	"google.golang.org/protobuf/types/known/structpb"
)

var ErrMalformed = errors.New("malformed message")

const (
	fieldTokens   = "tokens"
	fieldMappers  = "mappers"
	fieldReducers = "reducers"
)

// Job is a count request.
type Job struct {
	Tokens []string
	Config pipeline.Config
}

// EncodeJob builds the request message for job.
func EncodeJob(job Job) (*structpb.Struct, error) {
	tokens := make([]any, 0, len(job.Tokens))
	for _, tok := range job.Tokens {
		tokens = append(tokens, tok)
	}
	return structpb.NewStruct(map[string]any{
		fieldTokens:   tokens,
		fieldMappers:  job.Config.Mappers,
		fieldReducers: job.Config.Reducers,
	})
}

// DecodeJob reads a request message. Missing pool sizes fall back to the
// defaults; the capacity is always set by the receiving side.
func DecodeJob(msg *structpb.Struct) (Job, error) {
	job := Job{Config: pipeline.DefaultConfig()}
	fields := msg.GetFields()
	if v, ok := fields[fieldTokens]; ok {
		list := v.GetListValue()
		if list == nil {
			return Job{}, fmt.Errorf("%w: %q is not a list", ErrMalformed, fieldTokens)
		}
		job.Tokens = make([]string, 0, len(list.GetValues()))
		for i, tv := range list.GetValues() {
			s, ok := tv.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return Job{}, fmt.Errorf("%w: token %d is not a string", ErrMalformed, i)
			}
			job.Tokens = append(job.Tokens, s.StringValue)
		}
	}
	var err error
	if job.Config.Mappers, err = intField(fields, fieldMappers, job.Config.Mappers); err != nil {
		return Job{}, err
	}
	if job.Config.Reducers, err = intField(fields, fieldReducers, job.Config.Reducers); err != nil {
		return Job{}, err
	}
	return job, nil
}

func intField(fields map[string]*structpb.Value, name string, def int) (int, error) {
	v, ok := fields[name]
	if !ok {
		return def, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformed, name)
	}
	return int(n.NumberValue), nil
}

// EncodeResult builds the reply message for a finished run.
func EncodeResult(res *pipeline.Result) *structpb.ListValue {
	values := make([]*structpb.Value, 0, res.Len())
	for word, count := range res.All() {
		values = append(values, structpb.NewListValue(&structpb.ListValue{
			Values: []*structpb.Value{structpb.NewStringValue(word), structpb.NewNumberValue(float64(count))},
		}))
	}
	return &structpb.ListValue{Values: values}
}

// DecodeResult reads a reply message back into sorted records.
func DecodeResult(msg *structpb.ListValue) ([]types.Record, error) {
	records := make([]types.Record, 0, len(msg.GetValues()))
	for i, v := range msg.GetValues() {
		pair := v.GetListValue().GetValues()
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: entry %d is not a [word, count] pair", ErrMalformed, i)
		}
		word, ok := pair[0].GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d has no word", ErrMalformed, i)
		}
		count, ok := pair[1].GetKind().(*structpb.Value_NumberValue)
		if !ok || count.NumberValue < 1 {
			return nil, fmt.Errorf("%w: entry %d has no positive count", ErrMalformed, i)
		}
		records = append(records, types.Record{Word: word.StringValue, Count: int(count.NumberValue)})
	}
	return records, nil
}
