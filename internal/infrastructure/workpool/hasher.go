// Package workpool bounds the number of concurrent bcrypt computations.
// Hashing is the one intentionally slow, CPU-bound step in the service; a
// burst of registrations or logins must not be able to occupy every core
// and stall unrelated request handling. Requests queue on a buffered
// channel and a fixed set of workers drains it.
package workpool

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/platformlab/accounts-api/internal/api/metrics"
	"github.com/platformlab/accounts-api/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 64
)

type hashJob struct {
	ctx       context.Context
	plaintext string
	hash      string
	verify    bool
	reply     chan hashResult
}

type hashResult struct {
	hash string
	ok   bool
	err  error
}

// HasherPool runs an underlying hasher on a fixed set of workers. It
// implements ports.PasswordHasher itself, so callers cannot tell it apart
// from the direct hasher.
type HasherPool struct {
	jobs       chan hashJob
	hasher     ports.PasswordHasher
	numWorkers int
	log        zerolog.Logger
}

// NewHasherPool creates a pool with numWorkers workers around hasher.
// If numWorkers <= 0, defaultWorkers is used.
func NewHasherPool(numWorkers int, hasher ports.PasswordHasher, log zerolog.Logger) *HasherPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &HasherPool{
		jobs:       make(chan hashJob, channelBuffer),
		hasher:     hasher,
		numWorkers: numWorkers,
		log:        log,
	}
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled.
func (p *HasherPool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		go p.runWorker(ctx, i)
	}
}

// Hash queues a hashing job and waits for its result. Returns ctx.Err() if
// the request is cancelled while queued or in flight.
func (p *HasherPool) Hash(ctx context.Context, plaintext string) (string, error) {
	res, err := p.submit(ctx, hashJob{ctx: ctx, plaintext: plaintext})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Verify queues a verification job and waits for its result.
func (p *HasherPool) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	res, err := p.submit(ctx, hashJob{ctx: ctx, plaintext: plaintext, hash: hash, verify: true})
	if err != nil {
		return false, err
	}
	return res.ok, res.err
}

func (p *HasherPool) submit(ctx context.Context, job hashJob) (hashResult, error) {
	job.reply = make(chan hashResult, 1)

	select {
	case p.jobs <- job:
		metrics.HashQueueDepth.Set(float64(len(p.jobs)))
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}

	select {
	case res := <-job.reply:
		return res, nil
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	}
}

func (p *HasherPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			metrics.HashQueueDepth.Set(float64(len(p.jobs)))
			if job.ctx.Err() != nil {
				// caller already gave up; skip the expensive work
				continue
			}
			job.reply <- p.run(job)
		}
	}
}

func (p *HasherPool) run(job hashJob) hashResult {
	start := time.Now()
	var res hashResult
	if job.verify {
		res.ok, res.err = p.hasher.Verify(job.ctx, job.plaintext, job.hash)
		metrics.HashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	} else {
		res.hash, res.err = p.hasher.Hash(job.ctx, job.plaintext)
		metrics.HashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	}
	if res.err != nil {
		p.log.Error().Err(res.err).Bool("verify", job.verify).Msg("hashing job failed")
	}
	return res
}
