package workerpool

import (
	"context"
	"sync"
)

// Func is one unit of work, run on a pool goroutine with the pool's context.
type Func func(ctx context.Context)

// Pool runs submitted funcs on a fixed set of worker goroutines. Close stops
// intake and waits for everything already queued; canceling the parent
// context abandons queued work instead.
type Pool struct {
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    chan Func
	wg      sync.WaitGroup
	closed  bool
	closeMu sync.Mutex
}

// New starts workers goroutines consuming submitted funcs.
func New(ctx context.Context, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan Func, workers*2+8),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.ctx.Done():
					return
				case fn, ok := <-p.jobs:
					if !ok {
						return
					}
					fn(p.ctx)
				}
			}
		}()
	}
	return p
}

// Submit queues fn for a worker. It reports false once the pool is closed or
// its context canceled. The lock is held across the send so a concurrent
// Close cannot pull the channel out from under it.
func (p *Pool) Submit(fn Func) bool {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobs <- fn:
		return true
	}
}

// Close drains the queue, waits for in-flight work, and releases the
// workers. It is safe to call more than once.
func (p *Pool) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.closeMu.Unlock()
	p.wg.Wait()
	p.cancel()
}
