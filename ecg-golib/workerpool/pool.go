package workerpool

import (
	"sync"
)

// Job represents a unit of work to be run by the pool.
type Job func() error

// Pool runs jobs across a fixed number of goroutines.
type Pool struct {
	jobs chan Job
	quit chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	stopped bool
	errs    []error
}

// New creates a pool that runs jobs on n goroutines.
func New(n int) *Pool {
	p := &Pool{
		jobs: make(chan Job),
		quit: make(chan struct{}),
	}
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

// Add enqueues jobs for execution. It may block if all workers are busy.
// Jobs added after Stop are dropped. Add must not be called after Wait
// has returned.
func (p *Pool) Add(jobs []Job) {
	for _, job := range jobs {
		p.wg.Add(1)
		select {
		case p.jobs <- job:
		case <-p.quit:
			p.wg.Done()
			return
		}
	}
}

// Wait blocks until all added jobs have completed, releases the worker
// goroutines, and returns the first error encountered, if any.
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.errs) > 0 {
		return p.errs[0]
	}
	return nil
}

// Stop prevents further jobs from being added and shuts the workers down
// once they finish their current job. Use Wait to block until they drain.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stopped {
		p.stopped = true
		close(p.quit)
	}
}

func (p *Pool) worker() {
	for {
		select {
		case job := <-p.jobs:
			if err := job(); err != nil {
				p.mu.Lock()
				p.errs = append(p.errs, err)
				p.mu.Unlock()
			}
			p.wg.Done()
		case <-p.quit:
			return
		}
	}
}
