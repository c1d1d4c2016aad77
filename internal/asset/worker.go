// Package asset computes ordered-dithering masks off the caller's
// goroutine.
//
// A Worker is the peer end of a correlate.Conn: requests posted to it are
// computed concurrently on a parallel.WorkerPool and answered on one shared
// response stream, in completion order rather than request order.
package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/dither/internal/correlate"
	"github.com/gogpu/dither/internal/image"
	"github.com/gogpu/dither/internal/ordered"
	"github.com/gogpu/dither/internal/parallel"
)

// ErrClosed is returned by Post after Close.
var ErrClosed = errors.New("asset: worker closed")

// AnnounceID is the envelope id of the blue-noise mask broadcast by
// Worker.Announce.
const AnnounceID = "bluenoise"

// Request asks for one mask.
type Request struct {
	Kind  ordered.Kind
	Level int
}

func (r Request) String() string {
	return fmt.Sprintf("%v/%d", r.Kind, r.Level)
}

// Response carries a computed mask.
type Response struct {
	Matrix *image.Buf
}

// Generator computes the mask for a request.
type Generator func(Request) (*image.Buf, error)

// Option configures a Worker.
type Option func(*Worker)

// WithPool runs computations on a shared pool. The Worker does not close it.
func WithPool(p *parallel.WorkerPool) Option {
	return func(w *Worker) {
		w.pool = p
	}
}

// WithWorkers sizes the Worker's own pool when no shared pool is given.
// Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(w *Worker) {
		w.workers = n
	}
}

// WithParams sets the blue-noise parameters of the default generator.
func WithParams(p ordered.Params) Option {
	return func(w *Worker) {
		w.params = p
	}
}

// WithGenerator replaces ordered.Generate.
func WithGenerator(g Generator) Option {
	return func(w *Worker) {
		w.generate = g
	}
}

// WithLogger sets the worker's logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// Worker computes masks for requests posted to it.
//
// Worker implements correlate.Conn[Request, Response] and is safe for
// concurrent use.
type Worker struct {
	pool     *parallel.WorkerPool
	ownPool  bool
	workers  int
	params   ordered.Params
	generate Generator
	logger   *slog.Logger

	in       chan correlate.Envelope[Request]
	out      chan correlate.Envelope[Response]
	quit     chan struct{}
	loopDone chan struct{}
	inflight sync.WaitGroup
	once     sync.Once
}

var _ correlate.Conn[Request, Response] = (*Worker)(nil)

// NewWorker starts a worker.
func NewWorker(opts ...Option) *Worker {
	w := &Worker{
		logger:   slog.New(slog.DiscardHandler),
		in:       make(chan correlate.Envelope[Request]),
		out:      make(chan correlate.Envelope[Response]),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.pool == nil {
		w.pool = parallel.NewWorkerPool(w.workers)
		w.ownPool = true
	}
	if w.generate == nil {
		params := w.params
		w.generate = func(r Request) (*image.Buf, error) {
			return ordered.Generate(r.Kind, r.Level, params)
		}
	}

	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer close(w.loopDone)

	for {
		select {
		case <-w.quit:
			return
		case msg := <-w.in:
			w.dispatch(msg)
		}
	}
}

// dispatch queues one computation. Called only from loop.
func (w *Worker) dispatch(msg correlate.Envelope[Request]) {
	w.inflight.Add(1)
	job := func() {
		defer w.inflight.Done()
		select {
		case <-w.quit:
			return
		default:
		}
		w.reply(w.compute(msg))
	}
	if !w.pool.Submit(job) {
		w.inflight.Done()
		w.reply(correlate.Envelope[Response]{ID: msg.ID, Err: ErrClosed})
	}
}

func (w *Worker) compute(msg correlate.Envelope[Request]) (resp correlate.Envelope[Response]) {
	resp.ID = msg.ID
	defer func() {
		if r := recover(); r != nil {
			resp.Body = Response{}
			resp.Err = fmt.Errorf("asset: %v: panic: %v", msg.Body, r)
		}
	}()

	w.logger.Debug("asset: computing", "id", msg.ID, "request", msg.Body.String())
	m, err := w.generate(msg.Body)
	if err != nil {
		resp.Err = fmt.Errorf("asset: %v: %w", msg.Body, err)
		return resp
	}
	resp.Body = Response{Matrix: m}
	return resp
}

func (w *Worker) reply(resp correlate.Envelope[Response]) {
	if resp.Err != nil {
		w.logger.Warn("asset: request failed", "id", resp.ID, "error", resp.Err)
	}
	select {
	case w.out <- resp:
	case <-w.quit:
	}
}

// Post hands a request to the worker. It blocks until the worker accepts
// it, ctx is done or the worker is closed.
func (w *Worker) Post(ctx context.Context, msg correlate.Envelope[Request]) error {
	select {
	case w.in <- msg:
		return nil
	case <-w.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Announce computes the blue-noise mask of the given level and sends it
// unsolicited under AnnounceID. Receivers register interest in AnnounceID
// before calling Announce.
func (w *Worker) Announce(ctx context.Context, level int) error {
	return w.Post(ctx, correlate.Envelope[Request]{
		ID:   AnnounceID,
		Body: Request{Kind: ordered.KindBlueNoise, Level: level},
	})
}

// Receive returns the response stream. It is closed by Close.
func (w *Worker) Receive() <-chan correlate.Envelope[Response] {
	return w.out
}

// Close stops accepting requests, abandons undelivered responses and
// closes the response stream. Close is safe to call multiple times.
func (w *Worker) Close() {
	w.once.Do(func() {
		close(w.quit)
		<-w.loopDone
		w.inflight.Wait()
		if w.ownPool {
			w.pool.Close()
		}
		close(w.out)
	})
}
