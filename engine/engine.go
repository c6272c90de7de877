// Package engine orchestrates contract operations: it validates requests, resolves the contract interface,
// encodes calls, performs the network action and classifies failures.
//
// State-touching operations run one at a time on a single worker goroutine in submission order. Event queries only
// read already-known interfaces and bypass the queue.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/crytic/contractops/contractabi"
	"github.com/crytic/contractops/events"
	"github.com/crytic/contractops/logging"
	"github.com/crytic/contractops/metrics"
	"github.com/crytic/contractops/networks"
	"github.com/crytic/contractops/tracing"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// ErrEngineClosed is returned for operations submitted after Close.
var ErrEngineClosed = errors.New("the contract operation engine is closed")

// Operation names used in logs, metrics and events.
const (
	OperationInspect  = "inspect"
	OperationCall     = "call"
	OperationEstimate = "estimate"
	OperationSimulate = "simulate"
	OperationSend     = "send"
	OperationEvents   = "events"
	OperationAbi      = "abi"
)

// Outcomes reported for finished operations.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// job is one queued operation.
type job struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	err  error
	done chan struct{}
}

// Engine is the contract operation engine. It is safe for concurrent use.
type Engine struct {
	registry *networks.Registry
	resolver *contractabi.Resolver
	metrics  *metrics.Recorder
	logger   *logging.Logger

	// receiptPollInterval is the delay between receipt queries while waiting for a sent transaction.
	receiptPollInterval time.Duration

	// receiptTimeout bounds the wait for a receipt. Zero waits until the caller's context ends.
	receiptTimeout time.Duration

	jobs      chan *job
	quit      chan struct{}
	workerWg  sync.WaitGroup
	closeOnce sync.Once

	// OperationCompleted is published after every operation.
	OperationCompleted events.EventEmitter[OperationCompletedEvent]

	// TransactionSubmitted is published once a transaction is accepted by the network, before its receipt is known.
	TransactionSubmitted events.EventEmitter[TransactionSubmittedEvent]
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records operation metrics in recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = recorder
	}
}

// WithReceiptPolling sets how often and how long Send polls for a receipt.
func WithReceiptPolling(interval time.Duration, timeout time.Duration) Option {
	return func(e *Engine) {
		e.receiptPollInterval = interval
		e.receiptTimeout = timeout
	}
}

// New creates an Engine over registry and resolver and starts its worker.
func New(registry *networks.Registry, resolver *contractabi.Resolver, opts ...Option) *Engine {
	e := &Engine{
		registry:            registry,
		resolver:            resolver,
		logger:              logging.GlobalLogger.NewSubLogger("module", logging.ENGINE_SERVICE),
		receiptPollInterval: 2 * time.Second,
		receiptTimeout:      5 * time.Minute,
		jobs:                make(chan *job),
		quit:                make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.OperationCompleted.Subscribe(e.onOperationCompleted)
	e.TransactionSubmitted.Subscribe(e.onTransactionSubmitted)

	e.workerWg.Add(1)
	go e.work()
	return e
}

// Registry returns the network registry used by the engine.
func (e *Engine) Registry() *networks.Registry {
	return e.registry
}

// Close stops the worker and releases connections and cache tiers. Operations already running finish first.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		close(e.quit)
		e.workerWg.Wait()
		e.registry.Close()
		err = e.resolver.Close()
	})
	return err
}

// work runs queued jobs one at a time until the engine is closed.
func (e *Engine) work() {
	defer e.workerWg.Done()
	for {
		select {
		case j := <-e.jobs:
			e.metrics.QueueChanged(-1)
			// A caller that gave up while queued is not served.
			if err := j.ctx.Err(); err != nil {
				j.err = err
			} else {
				j.err = j.run(j.ctx)
			}
			close(j.done)
		case <-e.quit:
			return
		}
	}
}

// submit queues run and blocks until it has finished, the caller's context ends before it starts, or the engine
// is closed.
func (e *Engine) submit(ctx context.Context, run func(ctx context.Context) error) error {
	j := &job{ctx: ctx, run: run, done: make(chan struct{})}
	e.metrics.QueueChanged(1)
	select {
	case e.jobs <- j:
	case <-ctx.Done():
		e.metrics.QueueChanged(-1)
		return ctx.Err()
	case <-e.quit:
		e.metrics.QueueChanged(-1)
		return ErrEngineClosed
	}
	<-j.done
	return j.err
}

// operation describes one invocation for instrumentation.
type operation struct {
	name    string
	network string
	queued  bool
}

// execute runs fn as the operation op, queued or not, wrapping it in a span, debug logs and a completion event.
func execute[T any](e *Engine, ctx context.Context, op operation, fn func(ctx context.Context) (T, error)) (T, error) {
	jobID := uuid.New()
	start := time.Now()
	logger := e.logger.NewSubLogger("job", jobID.String())
	logger.Debug("Starting ", op.name, " on ", op.network)

	var result T
	run := func(ctx context.Context) error {
		ctx, span := tracing.StartSpan(ctx, "contractops."+op.name,
			attribute.String("job.id", jobID.String()),
			attribute.String("network", op.network),
		)
		var err error
		result, err = fn(ctx)
		tracing.EndSpan(span, err)
		return err
	}

	var err error
	if op.queued {
		err = e.submit(ctx, run)
	} else {
		err = run(ctx)
	}

	outcome := outcomeOf(result, err)
	elapsed := time.Since(start)
	logger.Debug("Finished ", op.name, " with outcome ", outcome, " in ", elapsed)
	_ = e.OperationCompleted.Publish(OperationCompletedEvent{
		JobID:     jobID,
		Operation: op.name,
		Network:   op.network,
		Outcome:   outcome,
		Elapsed:   elapsed,
		Err:       err,
	})
	return result, err
}

func outcomeOf(result any, err error) string {
	if err != nil {
		return OutcomeError
	}
	if r, ok := result.(*CallResult); ok && !r.Success {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
