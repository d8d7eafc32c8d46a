// Package engine ties the compiler, a transport executor and the
// interpreter together. Execute is the whole surface: one request in, one
// response out, never an error.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/compiler"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/interpreter"
	"github.com/abdul-hamid-achik/hitcurl/packages/transport"
	"github.com/abdul-hamid-achik/hitcurl/packages/wire"
	"github.com/rs/zerolog"
)

type Engine struct {
	executor       transport.Executor
	compiler       *compiler.Compiler
	interpreter    *interpreter.Interpreter
	logger         zerolog.Logger
	defaultHeaders []model.KeyValue
	markers        wire.Markers
	now            func() time.Time
}

type Option func(*Engine)

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDefaultHeaders adds headers sent with every request. A request header
// with the same name replaces the default.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(e *Engine) {
		for k, v := range headers {
			e.defaultHeaders = append(e.defaultHeaders, model.KeyValue{Key: k, Value: v, Enabled: true})
		}
	}
}

// WithMarkers sets the instrumentation markers used by both the compiler and
// the interpreter.
func WithMarkers(m wire.Markers) Option {
	return func(e *Engine) {
		e.markers = m
	}
}

// WithClock overrides the clock used for timing and response timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(executor transport.Executor, opts ...Option) *Engine {
	e := &Engine{
		executor: executor,
		logger:   zerolog.Nop(),
		markers:  wire.DefaultMarkers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	sort.SliceStable(e.defaultHeaders, func(i, j int) bool {
		return e.defaultHeaders[i].Key < e.defaultHeaders[j].Key
	})

	e.compiler = compiler.New(compiler.WithMarkers(e.markers))
	e.interpreter = interpreter.New(interpreter.WithMarkers(e.markers), interpreter.WithClock(e.now))
	return e
}

// Compile returns the invocation Execute would run for req.
func (e *Engine) Compile(req *model.Request) *compiler.Invocation {
	return e.compiler.Compile(e.withDefaults(req))
}

// Execute runs req and returns its response. Transport failures, timeouts
// and cancellation are reported as a response with Status 0.
func (e *Engine) Execute(ctx context.Context, req *model.Request) (resp *model.HttpResponse) {
	start := e.now()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("request execution panicked")
			resp = e.failure(fmt.Sprintf("Request failed: %v", r), e.now().Sub(start))
		}
	}()

	inv := e.Compile(req)
	log := e.logger.With().
		Str("method", string(inv.EffectiveMethod())).
		Str("url", inv.URL).
		Logger()
	log.Debug().Str("command", inv.Redacted()).Msg("executing request")

	if e.executor == nil {
		return e.failure("No transport configured", e.now().Sub(start))
	}

	res, err := e.executor.Execute(ctx, inv)
	elapsed := e.now().Sub(start)
	if err != nil {
		log.Warn().Err(err).Dur("elapsed", elapsed).Msg("transport aborted")
		return e.interpreter.Interpret("", err.Error(), true, elapsed)
	}
	if res == nil {
		res = &transport.Result{}
	}

	resp = e.interpreter.Interpret(res.Stdout, res.Stderr, res.Failed, elapsed)
	if resp.Status == 0 {
		log.Warn().
			Str("failure", string(resp.Failure)).
			Str("stderr", strings.TrimSpace(res.Stderr)).
			Msg("no response")
	} else {
		log.Debug().
			Int("status", resp.Status).
			Int64("size", resp.Size).
			Dur("time", resp.Time).
			Msg("request finished")
	}
	return resp
}

func (e *Engine) withDefaults(req *model.Request) *model.Request {
	if req == nil || len(e.defaultHeaders) == 0 {
		return req
	}

	own := make(map[string]bool, len(req.Headers))
	for _, h := range req.Headers {
		if h.Included() {
			own[strings.ToLower(h.Key)] = true
		}
	}

	merged := req.Clone()
	merged.Headers = nil
	for _, h := range e.defaultHeaders {
		if !own[strings.ToLower(h.Key)] {
			merged.Headers = append(merged.Headers, h)
		}
	}
	merged.Headers = append(merged.Headers, req.Headers...)
	return merged
}

func (e *Engine) failure(message string, elapsed time.Duration) *model.HttpResponse {
	return &model.HttpResponse{
		Status:     0,
		StatusText: model.StatusTextError,
		Headers:    map[string]string{},
		Body:       message,
		Time:       elapsed,
		Timestamp:  e.now(),
		Failure:    model.FailureTransport,
	}
}
