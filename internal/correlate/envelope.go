package correlate

import (
	"context"
	"strconv"
	"sync/atomic"
)

// Envelope is one message on the wire: a body tagged with the id of the
// exchange it belongs to. Err carries a peer-side failure in responses.
type Envelope[T any] struct {
	ID   string
	Body T
	Err  error
}

// Conn is the duplex stream to a peer.
//
// Post delivers a request to the peer. Receive returns the peer's single
// response stream; the peer closes it when it stops.
type Conn[Req, Resp any] interface {
	Post(ctx context.Context, msg Envelope[Req]) error
	Receive() <-chan Envelope[Resp]
}

var idCounter atomic.Uint64

// NewID returns a process-unique token.
func NewID() string {
	return strconv.FormatUint(idCounter.Add(1), 36)
}
