// Package correlate multiplexes request/response exchanges over one duplex
// message stream.
//
// A Channel posts each request as an Envelope tagged with a unique id and
// returns a Future. Responses arrive on a single shared stream in any order;
// each one resolves only the pending request whose id it carries. Responses
// with unknown ids are dropped, which lets a peer broadcast unsolicited
// messages that only callers who asked for them with Expect will see.
//
// The table of pending requests is owned by one goroutine (Channel.Run),
// so no locks guard it. Every pending entry has a bounded wait: it resolves
// with ErrTimeout when the timeout expires and with ErrPeerClosed when the
// peer's stream ends.
package correlate
