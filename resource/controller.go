package resource

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits for a pipeline run.
type Config struct {
	// MaxWorkers is the maximum number of concurrent compute workers
	// shared by the embedding and scoring stages.
	// If 0, defaults to 1.
	MaxWorkers int64

	// UploadLimitBytesPerSec caps the byte rate of artifact uploads.
	// If 0, uploads are not throttled.
	UploadLimitBytesPerSec int64
}

// Controller manages worker slots and upload throughput.
// The zero value of *Controller (nil) enforces no limits.
type Controller struct {
	cfg Config

	workers   *semaphore.Weighted
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.UploadLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.UploadLimitBytesPerSec), int(cfg.UploadLimitBytesPerSec))
	}

	return c
}

// MaxWorkers returns the configured worker bound.
func (c *Controller) MaxWorkers() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxWorkers)
}

// AcquireWorker reserves a compute worker slot, blocking until one is
// free or ctx is canceled. The returned release function must be called
// exactly once.
func (c *Controller) AcquireWorker(ctx context.Context) (func(), error) {
	if c == nil {
		return func() {}, nil
	}
	if err := c.workers.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { c.workers.Release(1) }, nil
}

// TryAcquireWorker reserves a worker slot without blocking.
// The release function is nil when no slot was available.
func (c *Controller) TryAcquireWorker() (func(), bool) {
	if c == nil {
		return func() {}, true
	}
	if !c.workers.TryAcquire(1) {
		return nil, false
	}
	return func() { c.workers.Release(1) }, true
}

// AcquireIO waits until the upload limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}
