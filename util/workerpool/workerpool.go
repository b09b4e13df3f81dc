// Package workerpool runs indexed jobs with bounded concurrency.
package workerpool

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool bounds the number of jobs that run at the same time. A Pool may be
// shared by any number of concurrent Process calls, in which case the bound
// holds across all of them.
type Pool struct {
	size int
	sem  *semaphore.Weighted
}

// New returns a pool that runs at most size jobs at once.
func New(size int) (*Pool, error) {
	if size <= 0 {
		return nil, errors.Errorf("worker pool size must be positive, got %d", size)
	}
	return &Pool{
		size: size,
		sem:  semaphore.NewWeighted(int64(size)),
	}, nil
}

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Default returns the process-wide pool, sized by GOMAXPROCS on first use.
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		pool, err := New(runtime.GOMAXPROCS(0))
		if err != nil {
			panic(err)
		}
		defaultPool = pool
	})
	return defaultPool
}

// Size returns the maximum number of jobs the pool runs at once.
func (p *Pool) Size() int {
	return p.size
}

// Process calls job for every index in [0, n). It returns the first error
// returned by a job, after which jobs that have not started yet are skipped
// and the context passed to running jobs is cancelled. A cancelled ctx stops
// the dispatch of new jobs and its error is returned.
func Process(ctx context.Context, p *Pool, n int, job func(ctx context.Context, index int) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		err := p.sem.Acquire(groupCtx, 1)
		if err != nil {
			break
		}
		index := i
		group.Go(func() error {
			defer p.sem.Release(1)
			return job(groupCtx, index)
		})
	}

	err := group.Wait()
	if err != nil {
		return err
	}
	return ctx.Err()
}
