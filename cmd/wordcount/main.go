package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"wordcount/cmd/wordcount/input"
	"wordcount/mapreduce/pipeline"
	"wordcount/mapreduce/types"
	"wordcount/mapreduce/wire"
	"wordcount/utils"

	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

type Context struct {
	cfg     pipeline.Config
	csa     string
	timeout time.Duration
	digest  bool
	logger  *zap.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage of %s: %s [OPTIONS] <COMMAND> [ARGS]
Options:
  -m <number>                Number of mapper workers (default %d).
  -r <number>                Number of reducer workers (default %d).
  -capacity <number>         Maximum number of words per run, -1 derives it from free memory, 0 is unbounded (default 0).
  -csa <address>             Count server address (for the submit command).
  -timeout <duration>        Abort the run after this long, 0 waits forever (default 0).
  -digest                    Print the MD5 digest of the counts after them.
  -v                         Print progress of every stage.
  -h                         Print this help message.
Commands:
  count [filename]           Count the words of the file, or of stdin up to the word %s.
  submit [filename]          Send the words to a count server and print its counts.
`, os.Args[0], os.Args[0], pipeline.DefaultMappers, pipeline.DefaultReducers, input.Sentinel)
}

func checkCommand(commands []string) error {
	if len(commands) == 0 {
		return errors.New("no command specified")
	}
	switch commands[0] {
	case "count", "submit":
		if len(commands) > 2 {
			return fmt.Errorf("%s command requires at most 1 argument", commands[0])
		}
	default:
		return errors.New("unknown command")
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// newContext parses the options in args and returns the context they describe
// together with the remaining command arguments.
func newContext(args []string) (*Context, []string, error) {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	mappers := flagSet.Int("m", pipeline.DefaultMappers, "Number of mapper workers")
	reducers := flagSet.Int("r", pipeline.DefaultReducers, "Number of reducer workers")
	capacity := flagSet.Int("capacity", 0, "Maximum number of words per run")
	csa := flagSet.String("csa", "localhost:8080", "Count server address")
	timeout := flagSet.Duration("timeout", 0, "Abort the run after this long")
	digest := flagSet.Bool("digest", false, "Print the MD5 digest of the counts")
	verbose := flagSet.Bool("v", false, "Print progress of every stage")
	flagSet.Usage = printUsage
	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}
	if err := checkCommand(flagSet.Args()); err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		return nil, nil, err
	}
	if *capacity < 0 {
		*capacity, err = utils.MemoryCapacity()
		if err != nil {
			logger.Warn("cannot derive capacity from free memory, running unbounded", zap.Error(err))
		}
	}
	ctx := &Context{
		cfg:     pipeline.Config{Mappers: *mappers, Reducers: *reducers, Capacity: *capacity},
		csa:     *csa,
		timeout: *timeout,
		digest:  *digest,
		logger:  logger,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	if err := ctx.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return ctx, flagSet.Args(), nil
}

func main() {
	ctx, args, err := newContext(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printUsage()
		os.Exit(1)
	}
	defer ctx.logger.Sync()

	filename := ""
	if len(args) == 2 {
		filename = args[1]
	}
	var operation string
	switch args[0] {
	case "count":
		err = ctx.Count(filename)
		operation = "count words"
	case "submit":
		err = ctx.Submit(filename)
		operation = "submit words"
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", operation, err)
		os.Exit(1)
	}
}

// readTokens loads the words from filename, or from stdin when it is empty.
func (ctx *Context) readTokens(filename string) ([]string, error) {
	if filename != "" {
		return input.ReadFile(filename)
	}
	if f, ok := ctx.stdin.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			fmt.Fprintf(ctx.stderr, "Enter words (type '%s' to finish):\n", input.Sentinel)
		}
	}
	return input.ReadTokens(ctx.stdin, input.Sentinel)
}

func (ctx *Context) runContext() (context.Context, context.CancelFunc) {
	if ctx.timeout > 0 {
		return context.WithTimeout(context.Background(), ctx.timeout)
	}
	return context.WithCancel(context.Background())
}

// print writes the counts and, if asked for, their digest.
func (ctx *Context) print(records []types.Record) error {
	var buf bytes.Buffer
	if _, err := pipeline.WriteRecords(&buf, records); err != nil {
		return err
	}
	if ctx.digest {
		sum, err := utils.HashBytes(buf.Bytes())
		if err != nil {
			return err
		}
		fmt.Fprintf(&buf, "digest: %s\n", sum)
	}
	_, err := buf.WriteTo(ctx.stdout)
	return err
}

// Count runs the pipeline in this process.
func (ctx *Context) Count(filename string) error {
	tokens, err := ctx.readTokens(filename)
	if err != nil {
		return err
	}
	runCtx, cancel := ctx.runContext()
	defer cancel()
	res, err := pipeline.Count(runCtx, tokens, ctx.cfg, ctx.logger)
	if err != nil {
		return err
	}
	return ctx.print(res.Records())
}

// Submit sends the words to the count server and prints its reply.
func (ctx *Context) Submit(filename string) error {
	tokens, err := ctx.readTokens(filename)
	if err != nil {
		return err
	}
	if err := ctx.cfg.CheckCapacity(len(tokens)); err != nil {
		return err
	}
	req, err := wire.EncodeJob(wire.Job{Tokens: tokens, Config: ctx.cfg})
	if err != nil {
		return err
	}
	ctx.logger.Info("submitting words", zap.String("server", ctx.csa), zap.Int("tokens", len(tokens)))
	resp, err := utils.SendSingleRequest(ctx.csa, req, ctx.timeout)
	if err != nil {
		return fmt.Errorf("failed to send count request: %w", err)
	}
	respMsg, ok := resp.(*structpb.ListValue)
	if !ok {
		return fmt.Errorf("received unexpected response type: %T", resp)
	}
	records, err := wire.DecodeResult(respMsg)
	if err != nil {
		return err
	}
	return ctx.print(records)
}
