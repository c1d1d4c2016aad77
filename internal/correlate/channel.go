package correlate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Errors resolving pending requests.
var (
	// ErrTimeout is returned when no response arrives within the channel's
	// timeout.
	ErrTimeout = errors.New("correlate: response timed out")

	// ErrPeerClosed is returned when the peer's response stream ends before
	// a response arrives, and by Send once that has happened.
	ErrPeerClosed = errors.New("correlate: peer closed")

	// ErrClosed is returned by Send after Run has returned.
	ErrClosed = errors.New("correlate: channel closed")

	// ErrDuplicateID is returned when an id is already pending.
	ErrDuplicateID = errors.New("correlate: duplicate request id")
)

// DefaultTimeout bounds how long a request stays pending.
const DefaultTimeout = 2 * time.Minute

// Option configures a Channel.
type Option func(*options)

type options struct {
	timeout time.Duration
	logger  *slog.Logger
}

// WithTimeout sets how long a request stays pending before it resolves with
// ErrTimeout. A zero or negative d disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithLogger sets the logger for unmatched responses and expiries.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Channel matches responses from a Conn to the requests that caused them.
//
// Send and Expect are safe for concurrent use once Run is executing.
type Channel[Req, Resp any] struct {
	conn    Conn[Req, Resp]
	timeout time.Duration
	logger  *slog.Logger

	register chan registration[Resp]
	drop     chan *pending[Resp]
	expire   chan *pending[Resp]
	stopped  chan struct{}
	closeErr error // set before stopped is closed
}

// pending is one entry of the table owned by Run.
type pending[Resp any] struct {
	id     string
	future *Future[Resp]
	timer  *time.Timer
}

type registration[Resp any] struct {
	entry *pending[Resp]
	reply chan error
}

// New creates a channel over conn. Call Run to start serving it.
func New[Req, Resp any](conn Conn[Req, Resp], opts ...Option) *Channel[Req, Resp] {
	o := options{timeout: DefaultTimeout, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Channel[Req, Resp]{
		conn:     conn,
		timeout:  o.timeout,
		logger:   o.logger,
		register: make(chan registration[Resp]),
		drop:     make(chan *pending[Resp]),
		expire:   make(chan *pending[Resp]),
		stopped:  make(chan struct{}),
	}
}

// Run owns the pending table until ctx is done or the peer's stream ends.
// On return every pending request is resolved: with ErrPeerClosed when the
// stream ended, with ErrClosed otherwise. Run returns nil when the peer
// closed and ctx.Err() when it was cancelled.
func (c *Channel[Req, Resp]) Run(ctx context.Context) error {
	table := make(map[string]*pending[Resp])
	responses := c.conn.Receive()
	var zero Resp

	finish := func(err error) {
		c.closeErr = err
		close(c.stopped)
		for id, p := range table {
			c.settle(p, zero, err)
			delete(table, id)
		}
	}

	for {
		select {
		case <-ctx.Done():
			finish(ErrClosed)
			return ctx.Err()

		case r := <-c.register:
			if _, dup := table[r.entry.id]; dup {
				r.reply <- fmt.Errorf("%w: %q", ErrDuplicateID, r.entry.id)
				continue
			}
			table[r.entry.id] = r.entry
			if c.timeout > 0 {
				p := r.entry
				p.timer = time.AfterFunc(c.timeout, func() {
					select {
					case c.expire <- p:
					case <-c.stopped:
					}
				})
			}
			r.reply <- nil

		case p := <-c.drop:
			if table[p.id] == p {
				delete(table, p.id)
				if p.timer != nil {
					p.timer.Stop()
				}
			}

		case p := <-c.expire:
			if table[p.id] != p {
				continue
			}
			delete(table, p.id)
			c.logger.Debug("correlate: request expired", "id", p.id, "timeout", c.timeout)
			c.settle(p, zero, fmt.Errorf("%w after %v: id %q", ErrTimeout, c.timeout, p.id))

		case msg, ok := <-responses:
			if !ok {
				finish(ErrPeerClosed)
				return nil
			}
			p, found := table[msg.ID]
			if !found {
				c.logger.Debug("correlate: unmatched response ignored", "id", msg.ID)
				continue
			}
			delete(table, msg.ID)
			c.settle(p, msg.Body, msg.Err)
		}
	}
}

// settle resolves p and stops its timer. Called only from Run.
func (c *Channel[Req, Resp]) settle(p *pending[Resp], body Resp, err error) {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.future.Resolve(body, err)
}

// Send registers id, posts req to the peer and returns the future its
// response resolves. An empty id is replaced by NewID().
func (c *Channel[Req, Resp]) Send(ctx context.Context, id string, req Req) (*Future[Resp], error) {
	if id == "" {
		id = NewID()
	}
	p, err := c.add(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.conn.Post(ctx, Envelope[Req]{ID: id, Body: req}); err != nil {
		c.remove(p)
		err = fmt.Errorf("correlate: post %q: %w", id, err)
		var zero Resp
		p.future.Resolve(zero, err)
		return nil, err
	}
	return p.future, nil
}

// Expect registers id without posting anything, for messages the peer
// sends on its own.
func (c *Channel[Req, Resp]) Expect(ctx context.Context, id string) (*Future[Resp], error) {
	p, err := c.add(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.future, nil
}

// Done returns a channel closed once Run has returned.
func (c *Channel[Req, Resp]) Done() <-chan struct{} {
	return c.stopped
}

func (c *Channel[Req, Resp]) add(ctx context.Context, id string) (*pending[Resp], error) {
	p := &pending[Resp]{id: id, future: NewFuture[Resp]()}
	reply := make(chan error, 1)
	select {
	case c.register <- registration[Resp]{entry: p, reply: reply}:
	case <-c.stopped:
		return nil, c.closeErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	// Run answers every registration it receives before serving anything else.
	if err := <-reply; err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Channel[Req, Resp]) remove(p *pending[Resp]) {
	select {
	case c.drop <- p:
	case <-c.stopped:
	}
}
