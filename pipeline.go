package dither

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/text/message"

	"github.com/gogpu/dither/internal/asset"
	"github.com/gogpu/dither/internal/correlate"
	"github.com/gogpu/dither/internal/image"
	"github.com/gogpu/dither/internal/ordered"
	"github.com/gogpu/dither/internal/parallel"
)

// State is the coarse lifecycle state of a Pipeline.
type State int32

const (
	// StateIdle: created, not serving and no job in flight.
	StateIdle State = iota

	// StateAwaitingImage: Run is waiting for the next job.
	StateAwaitingImage

	// StateRunning: at least one job is in flight.
	StateRunning
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingImage:
		return "awaiting-image"
	case StateRunning:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Pipeline dithers submitted images through a fixed catalogue of steps and
// streams the results.
//
// Steps of one job run strictly one after another. Masks are computed by a
// background asset worker and shared across jobs, so a step waiting for a
// mask overlaps with its computation but never with another step of the
// same job. Jobs are independent: several may be in flight, and a failing
// job does not disturb the others or the shared masks.
//
// Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg     config
	logger  *slog.Logger
	printer *message.Printer

	pool     *parallel.WorkerPool
	worker   *asset.Worker
	provider *Provider
	bufs     *image.Pool

	gray  []Step
	color []Step

	serving atomic.Int32
	active  atomic.Int32
	closed  atomic.Bool
	stop    context.CancelFunc
	once    sync.Once
}

// New creates a pipeline and starts its asset worker.
//
// Example:
//
//	p, err := dither.New(dither.WithWorkers(4))
//	if err != nil {
//		return err
//	}
//	defer p.Close()
//
//	err = p.Process(ctx, dither.Job{Mode: dither.ModeGray, Image: img}, func(e dither.Event) {
//		fmt.Println(e.ID, e.Title)
//	})
func New(opts ...Option) (*Pipeline, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.blueLevel < ordered.MinBlueNoiseLevel || cfg.blueLevel > ordered.MaxBlueNoiseLevel {
		return nil, fmt.Errorf("dither: blue noise level %d: %w", cfg.blueLevel, ordered.ErrLevelRange)
	}

	logger := Logger()
	pool := parallel.NewWorkerPool(cfg.workers)
	worker := asset.NewWorker(
		asset.WithPool(pool),
		asset.WithParams(cfg.blueParams),
		asset.WithLogger(logger),
	)
	channel := correlate.New[asset.Request, asset.Response](worker,
		correlate.WithTimeout(cfg.assetTimeout),
		correlate.WithLogger(logger),
	)

	ctx, stop := context.WithCancel(context.Background())
	go func() {
		if err := channel.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("dither: asset channel stopped", "error", err)
		}
	}()

	p := &Pipeline{
		cfg:      cfg,
		logger:   logger,
		printer:  message.NewPrinter(cfg.lang),
		pool:     pool,
		worker:   worker,
		provider: newProvider(channel, logger),
		bufs:     image.NewPool(4),
		gray:     GrayCatalogue(cfg.lang),
		color:    ColorCatalogue(cfg.lang, cfg.paletteLevels, cfg.blueLevel),
		stop:     stop,
	}

	if cfg.announce {
		key := AssetKey{Kind: MaskBlueNoise, Level: cfg.blueLevel}
		if err := p.provider.expect(ctx, key, asset.AnnounceID); err != nil {
			p.Close()
			return nil, fmt.Errorf("dither: expect blue noise: %w", err)
		}
		if err := worker.Announce(ctx, cfg.blueLevel); err != nil {
			p.Close()
			return nil, fmt.Errorf("dither: announce blue noise: %w", err)
		}
	}
	return p, nil
}

// Steps returns a copy of the catalogue for mode.
func (p *Pipeline) Steps(mode Mode) []Step {
	steps, err := p.catalogue(mode)
	if err != nil {
		return nil
	}
	return append([]Step(nil), steps...)
}

// Provider returns the shared mask provider.
func (p *Pipeline) Provider() *Provider {
	return p.provider
}

// State reports whether the pipeline is idle, waiting for jobs or running
// one.
func (p *Pipeline) State() State {
	switch {
	case p.active.Load() > 0:
		return StateRunning
	case p.serving.Load() > 0:
		return StateAwaitingImage
	default:
		return StateIdle
	}
}

// Run serves jobs until ctx is done or jobs is closed, sending every event
// to events. Each job runs on its own goroutine; Run waits for the jobs it
// started before returning. Job failures are reported as EventError and do
// not stop Run.
func (p *Pipeline) Run(ctx context.Context, jobs <-chan Job, events chan<- Event) error {
	if p.closed.Load() {
		return ErrClosed
	}
	p.serving.Add(1)
	defer p.serving.Add(-1)

	var wg sync.WaitGroup
	defer wg.Wait()

	emit := func(e Event) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-jobs:
			if !ok {
				return nil
			}
			wg.Go(func() {
				_ = p.Process(ctx, job, emit) // reported through emit
			})
		}
	}
}

// Process runs one job to completion, calling emit for every event in
// order: the "original" preview (and "grayscale" for gray jobs), then for
// each step an EventStarted (color jobs only) and its EventResult.
//
// On failure emit receives an EventError carrying the returned *JobError.
func (p *Pipeline) Process(ctx context.Context, job Job, emit func(Event)) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if job.ID == "" {
		job.ID = correlate.NewID()
	}

	p.active.Add(1)
	defer p.active.Add(-1)

	log := p.logger.With("job", job.ID, "mode", job.Mode.String())
	log.Info("dither: job started")

	if err := p.process(ctx, job, emit); err != nil {
		var jerr *JobError
		if !errors.As(err, &jerr) {
			jerr = &JobError{JobID: job.ID, Err: err}
		}
		log.Warn("dither: job failed", "step", jerr.Step, "error", jerr.Err)
		emit(Event{Type: EventError, JobID: job.ID, ID: jerr.Step, Err: jerr})
		return jerr
	}

	log.Info("dither: job finished")
	return nil
}

func (p *Pipeline) process(ctx context.Context, job Job, emit func(Event)) error {
	steps, err := p.catalogue(job.Mode)
	if err != nil {
		return err
	}

	enc := p.encoding()
	src, err := job.Image.Normalize(job.Mode.channels(), enc)
	if err != nil {
		return err
	}

	assets := p.provider.forJob(job.ID)
	assets.Prefetch(ctx, assetKeys(steps)...)

	emit(Event{
		Type:  EventResult,
		JobID: job.ID,
		ID:    OriginalID,
		Title: p.printer.Sprintf("Original"),
		Image: job.Image.Clone(),
	})
	if job.Mode == ModeGray {
		gray, err := src.Raw(job.Image.Format, enc)
		if err != nil {
			return err
		}
		emit(Event{
			Type:  EventResult,
			JobID: job.ID,
			ID:    GrayscaleID,
			Title: p.printer.Sprintf("Grayscale"),
			Image: gray,
		})
	}

	env := stepEnv{assets: assets, random: p.cfg.random}
	if p.cfg.parallelRows {
		env.rows = p.pool
	}

	for _, s := range steps {
		if job.Mode == ModeColor {
			emit(Event{Type: EventStarted, JobID: job.ID, ID: s.ID, Title: s.Title})
		}
		out, err := p.runStep(ctx, s, src, job.Image.Format, env)
		if err != nil {
			return &JobError{JobID: job.ID, Step: s.ID, Err: err}
		}
		emit(Event{Type: EventResult, JobID: job.ID, ID: s.ID, Title: s.Title, Image: out})
	}
	return nil
}

// runStep applies s to a pooled working copy of src.
func (p *Pipeline) runStep(ctx context.Context, s Step, src *image.Buf, format Format, env stepEnv) (Image, error) {
	work, err := p.bufs.Get(src.Width(), src.Height(), src.Channels())
	if err != nil {
		return Image{}, err
	}
	defer p.bufs.Put(work)

	if err := work.CopyFrom(src); err != nil {
		return Image{}, err
	}
	if err := s.apply(ctx, work, env); err != nil {
		return Image{}, err
	}
	return work.Raw(format, p.encoding())
}

func (p *Pipeline) catalogue(mode Mode) ([]Step, error) {
	switch mode {
	case ModeGray:
		return p.gray, nil
	case ModeColor:
		return p.color, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}
}

func (p *Pipeline) encoding() image.Encoding {
	if p.cfg.linear {
		return image.EncodingLinear
	}
	return image.EncodingGamma
}

// Close stops the asset worker and its pool. Pending mask requests fail
// with correlate.ErrClosed; jobs in flight fail at their next mask. Close
// is safe to call multiple times.
func (p *Pipeline) Close() {
	p.once.Do(func() {
		p.closed.Store(true)
		p.stop()
		p.worker.Close()
		p.pool.Close()
	})
}
