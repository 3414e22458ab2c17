package worker

import (
	"context"
	"sync"
)

// Pool runs jobs on their own goroutines with at most Size running at once.
type Pool[J any] struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	handle func(context.Context, J)
}

func NewPool[J any](size int, handle func(context.Context, J)) *Pool[J] {
	if size <= 0 {
		size = 1
	}
	return &Pool[J]{sem: make(chan struct{}, size), handle: handle}
}

// Submit blocks until a slot is free, then starts handling job. It returns
// ctx.Err() if ctx ends first; the job is then not run.
func (p *Pool[J]) Submit(ctx context.Context, job J) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		p.handle(ctx, job)
	}()
	return nil
}

// Wait blocks until every submitted job has returned.
func (p *Pool[J]) Wait() {
	p.wg.Wait()
}

func (p *Pool[J]) InFlight() int {
	return len(p.sem)
}
