package dither

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/dither/internal/asset"
	"github.com/gogpu/dither/internal/cache"
	"github.com/gogpu/dither/internal/correlate"
	"github.com/gogpu/dither/internal/image"
)

// MaskFuture is the eventual value of one shared mask. Wait blocks until
// the mask or its error is available.
type MaskFuture = correlate.Future[*Buf]

// Provider hands out shared threshold masks. Each AssetKey is requested
// from the asset worker at most once while its result is good; every
// caller of the same key gets the same future. A future that fails is
// forgotten so a later job can ask again.
//
// Provider is safe for concurrent use.
type Provider struct {
	channel *correlate.Channel[asset.Request, asset.Response]
	memo    *cache.Memo[AssetKey, *MaskFuture]
	logger  *slog.Logger
}

// newProvider creates a provider requesting masks over ch.
func newProvider(ch *correlate.Channel[asset.Request, asset.Response], logger *slog.Logger) *Provider {
	return &Provider{
		channel: ch,
		memo:    cache.New[AssetKey, *MaskFuture](),
		logger:  logger,
	}
}

// Matrix returns the future of the mask for key, requesting it under a
// generated id if nobody has yet.
func (p *Provider) Matrix(ctx context.Context, key AssetKey) *MaskFuture {
	return p.request(ctx, key, correlate.NewID)
}

// Stats reports memo hits and misses.
func (p *Provider) Stats() cache.Stats {
	return p.memo.Stats()
}

// request returns the memoized future for key, sending a request with the
// id from newID on a miss.
func (p *Provider) request(ctx context.Context, key AssetKey, newID func() string) *MaskFuture {
	f, hit := p.memo.GetOrCreate(key, func() *MaskFuture {
		id := newID()
		p.logger.Debug("dither: requesting asset", "key", key.String(), "id", id)
		resp, err := p.channel.Send(ctx, id, asset.Request{Kind: key.Kind, Level: key.Level})
		if err != nil {
			return correlate.Resolved[*image.Buf](nil, err)
		}
		return correlate.Map(resp, matrixOf)
	})
	if hit {
		p.logger.Debug("dither: asset memo hit", "key", key.String())
	} else {
		go p.forgetOnFailure(key, f)
	}
	return f
}

// expect memoizes the future of a mask the worker will send unsolicited
// under id.
func (p *Provider) expect(ctx context.Context, key AssetKey, id string) error {
	var err error
	f, hit := p.memo.GetOrCreate(key, func() *MaskFuture {
		var resp *correlate.Future[asset.Response]
		resp, err = p.channel.Expect(ctx, id)
		if err != nil {
			return correlate.Resolved[*image.Buf](nil, err)
		}
		return correlate.Map(resp, matrixOf)
	})
	if !hit {
		go p.forgetOnFailure(key, f)
	}
	return err
}

func (p *Provider) forgetOnFailure(key AssetKey, f *MaskFuture) {
	<-f.Done()
	if _, err := f.Wait(context.Background()); err != nil {
		p.logger.Warn("dither: asset failed", "key", key.String(), "error", err)
		p.memo.ForgetFunc(key, func(cur *MaskFuture) bool { return cur == f })
	}
}

func matrixOf(r asset.Response) (*image.Buf, error) {
	if r.Matrix == nil {
		return nil, errors.New("empty asset response")
	}
	return r.Matrix, nil
}

// forJob returns the asset view of one job. Requests it starts are tagged
// "{jobID}-{n}" with n counting the job's requests.
func (p *Provider) forJob(jobID string) *jobAssets {
	return &jobAssets{provider: p, jobID: jobID, seen: make(map[AssetKey]*MaskFuture)}
}

// jobAssets is the Assets of one job. A job keeps the first future it got
// for each key, so a failed mask is not requested again by the same job.
type jobAssets struct {
	provider *Provider
	jobID    string
	next     atomic.Int64

	mu   sync.Mutex
	seen map[AssetKey]*MaskFuture
}

var _ Assets = (*jobAssets)(nil)

func (a *jobAssets) newID() string {
	return fmt.Sprintf("%s-%d", a.jobID, a.next.Add(1)-1)
}

func (a *jobAssets) future(ctx context.Context, key AssetKey) *MaskFuture {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.seen[key]; ok {
		return f
	}
	f := a.provider.request(ctx, key, a.newID)
	a.seen[key] = f
	return f
}

// Prefetch starts the requests for keys without waiting for them.
func (a *jobAssets) Prefetch(ctx context.Context, keys ...AssetKey) {
	for _, key := range keys {
		a.future(ctx, key)
	}
}

// Mask waits for the mask of key.
func (a *jobAssets) Mask(ctx context.Context, key AssetKey) (*Buf, error) {
	m, err := a.future(ctx, key).Wait(ctx)
	if err != nil {
		return nil, &AssetError{Key: key, Err: err}
	}
	return m, nil
}
