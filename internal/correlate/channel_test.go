package correlate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeConn records posted requests and lets tests inject responses in any
// order. responses is unbuffered: once a send returns, Run holds the message.
type fakeConn struct {
	posted    chan Envelope[string]
	responses chan Envelope[int]

	mu      sync.Mutex
	postErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		posted:    make(chan Envelope[string], 16),
		responses: make(chan Envelope[int]),
	}
}

func (f *fakeConn) Post(_ context.Context, msg Envelope[string]) error {
	f.mu.Lock()
	err := f.postErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	f.posted <- msg
	return nil
}

func (f *fakeConn) Receive() <-chan Envelope[int] { return f.responses }

func (f *fakeConn) setPostErr(err error) {
	f.mu.Lock()
	f.postErr = err
	f.mu.Unlock()
}

// startChannel runs a channel until the test ends and returns Run's result.
func startChannel(t *testing.T, conn *fakeConn, opts ...Option) (*Channel[string, int], <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	ch := New[string, int](conn, opts...)
	result := make(chan error, 1)
	go func() { result <- ch.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-ch.Done()
	})
	return ch, result
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestChannelOutOfOrderResponses(t *testing.T) {
	conn := newFakeConn()
	ch, _ := startChannel(t, conn)
	ctx := waitCtx(t)

	ids := []string{"a", "b", "c"}
	futures := make(map[string]*Future[int], len(ids))
	for _, id := range ids {
		f, err := ch.Send(ctx, id, "req-"+id)
		if err != nil {
			t.Fatalf("Send(%q): %v", id, err)
		}
		futures[id] = f
	}

	for range ids {
		msg := <-conn.posted
		if msg.Body != "req-"+msg.ID {
			t.Errorf("posted body %q for id %q", msg.Body, msg.ID)
		}
	}

	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for _, id := range []string{"c", "a", "b"} {
		conn.responses <- Envelope[int]{ID: id, Body: want[id]}
	}

	for id, f := range futures {
		got, err := f.Wait(ctx)
		if err != nil {
			t.Fatalf("Wait(%q): %v", id, err)
		}
		if got != want[id] {
			t.Errorf("future %q = %d, want %d", id, got, want[id])
		}
	}
}

func TestChannelIgnoresUnmatchedResponse(t *testing.T) {
	conn := newFakeConn()
	ch, _ := startChannel(t, conn)
	ctx := waitCtx(t)

	f, err := ch.Send(ctx, "job-1", "x")
	if err != nil {
		t.Fatal(err)
	}
	conn.responses <- Envelope[int]{ID: "bluenoise", Body: 99}

	// A later registration completes only after Run processed the response.
	if _, err := ch.Expect(ctx, "sync"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-f.Done():
		t.Fatal("unmatched response resolved a pending request")
	default:
	}

	conn.responses <- Envelope[int]{ID: "job-1", Body: 5}
	if got, err := f.Wait(ctx); err != nil || got != 5 {
		t.Errorf("Wait = (%d, %v), want (5, nil)", got, err)
	}
}

func TestChannelGeneratesID(t *testing.T) {
	conn := newFakeConn()
	ch, _ := startChannel(t, conn)
	ctx := waitCtx(t)

	f, err := ch.Send(ctx, "", "x")
	if err != nil {
		t.Fatal(err)
	}
	msg := <-conn.posted
	if msg.ID == "" {
		t.Fatal("posted envelope has empty id")
	}
	conn.responses <- Envelope[int]{ID: msg.ID, Body: 1}
	if got, err := f.Wait(ctx); err != nil || got != 1 {
		t.Errorf("Wait = (%d, %v), want (1, nil)", got, err)
	}
}

func TestChannelErrorResponse(t *testing.T) {
	conn := newFakeConn()
	ch, _ := startChannel(t, conn)
	ctx := waitCtx(t)

	f, err := ch.Send(ctx, "a", "x")
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	conn.responses <- Envelope[int]{ID: "a", Err: boom}
	if _, err := f.Wait(ctx); !errors.Is(err, boom) {
		t.Errorf("Wait error = %v, want %v", err, boom)
	}
}

func TestChannelTimeout(t *testing.T) {
	conn := newFakeConn()
	ch, _ := startChannel(t, conn, WithTimeout(20*time.Millisecond))
	ctx := waitCtx(t)

	f, err := ch.Send(ctx, "slow", "x")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Wait(ctx); !errors.Is(err, ErrTimeout) {
		t.Fatalf("Wait error = %v, want ErrTimeout", err)
	}

	// The id is free again and a late response is ignored.
	conn.responses <- Envelope[int]{ID: "slow", Body: 1}
	if _, err := ch.Send(ctx, "slow", "x"); err != nil {
		t.Errorf("Send after timeout: %v", err)
	}
}

func TestChannelPeerClosed(t *testing.T) {
	conn := newFakeConn()
	ch, result := startChannel(t, conn)
	ctx := waitCtx(t)

	f, err := ch.Send(ctx, "a", "x")
	if err != nil {
		t.Fatal(err)
	}
	close(conn.responses)

	if _, err := f.Wait(ctx); !errors.Is(err, ErrPeerClosed) {
		t.Errorf("Wait error = %v, want ErrPeerClosed", err)
	}
	if err := <-result; err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
	if _, err := ch.Send(ctx, "b", "x"); !errors.Is(err, ErrPeerClosed) {
		t.Errorf("Send after close = %v, want ErrPeerClosed", err)
	}
}

func TestChannelCancelResolvesPending(t *testing.T) {
	conn := newFakeConn()
	ch := New[string, int](conn)
	runCtx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() { result <- ch.Run(runCtx) }()
	ctx := waitCtx(t)

	f, err := ch.Send(ctx, "a", "x")
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	if err := <-result; !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if _, err := f.Wait(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Wait error = %v, want ErrClosed", err)
	}
	if _, err := ch.Send(ctx, "b", "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("Send after cancel = %v, want ErrClosed", err)
	}
}

func TestChannelDuplicateID(t *testing.T) {
	conn := newFakeConn()
	ch, _ := startChannel(t, conn)
	ctx := waitCtx(t)

	if _, err := ch.Send(ctx, "dup", "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := ch.Send(ctx, "dup", "y"); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("second Send = %v, want ErrDuplicateID", err)
	}
}

func TestChannelExpectBroadcast(t *testing.T) {
	conn := newFakeConn()
	ch, _ := startChannel(t, conn)
	ctx := waitCtx(t)

	f, err := ch.Expect(ctx, "bluenoise")
	if err != nil {
		t.Fatal(err)
	}
	conn.responses <- Envelope[int]{ID: "bluenoise", Body: 64}
	if got, err := f.Wait(ctx); err != nil || got != 64 {
		t.Errorf("Wait = (%d, %v), want (64, nil)", got, err)
	}
	select {
	case msg := <-conn.posted:
		t.Errorf("Expect posted %+v", msg)
	default:
	}
}

func TestChannelPostFailureReleasesID(t *testing.T) {
	conn := newFakeConn()
	ch, _ := startChannel(t, conn)
	ctx := waitCtx(t)

	refused := errors.New("refused")
	conn.setPostErr(refused)
	if _, err := ch.Send(ctx, "a", "x"); !errors.Is(err, refused) {
		t.Fatalf("Send = %v, want %v", err, refused)
	}

	conn.setPostErr(nil)
	if _, err := ch.Send(ctx, "a", "x"); err != nil {
		t.Errorf("Send after failed post: %v", err)
	}
}

func TestNewIDUnique(t *testing.T) {
	const n = 1000
	var mu sync.Mutex
	seen := make(map[string]bool, n)
	var wg sync.WaitGroup
	for range 4 {
		wg.Go(func() {
			for range n / 4 {
				id := NewID()
				mu.Lock()
				if seen[id] {
					t.Errorf("duplicate id %q", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		})
	}
	wg.Wait()
}
