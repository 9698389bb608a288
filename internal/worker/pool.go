package worker

import (
	"context"
	"sort"
	"sync"
)

// Job is a unit of work run by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job returns
type Result interface {
	GetError() error
}

// JobFunc adapts a function to the Job interface
type JobFunc func(ctx context.Context) Result

// Execute calls f
func (f JobFunc) Execute(ctx context.Context) Result {
	return f(ctx)
}

type indexedJob struct {
	seq int
	job Job
}

type indexedResult struct {
	seq    int
	result Result
}

// Pool runs jobs on a fixed number of workers. Results are collected as they
// arrive and Wait returns them in the order the jobs were submitted.
type Pool struct {
	workers   int
	jobQueue  chan indexedJob
	results   chan indexedResult
	collected chan struct{}
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu        sync.Mutex // guards closed, submitted and the queue close
	closed    bool
	submitted int
	out       []indexedResult
}

// NewPool creates a pool bound to ctx. Non-positive worker counts mean one worker.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers:   workers,
		jobQueue:  make(chan indexedJob, workers*2),
		results:   make(chan indexedResult, workers*2),
		collected: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	go p.collect()
	return p
}

// Workers returns the number of workers
func (p *Pool) Workers() int {
	return p.workers
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case ij, ok := <-p.jobQueue:
			if !ok {
				return
			}
			r := indexedResult{seq: ij.seq, result: ij.job.Execute(p.ctx)}
			select {
			case p.results <- r:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

func (p *Pool) collect() {
	defer close(p.collected)
	for r := range p.results {
		p.out = append(p.out, r)
	}
}

// Submit queues a job. It returns false once the pool is waiting or shut down.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobQueue <- indexedJob{seq: p.submitted, job: job}:
		p.submitted++
		return true
	}
}

// Wait stops accepting jobs, waits for the queued ones and returns their results
// in submission order. Jobs dropped by a cancellation leave no result.
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	p.closeResults()
	<-p.collected

	sort.Slice(p.out, func(i, j int) bool { return p.out[i].seq < p.out[j].seq })
	results := make([]Result, len(p.out))
	for i, r := range p.out {
		results[i] = r.result
	}
	return results
}

// Shutdown cancels running jobs and stops the workers
func (p *Pool) Shutdown() {
	p.cancel()
	p.closeQueue()
	p.wg.Wait()
	p.closeResults()
	<-p.collected
}

func (p *Pool) closeQueue() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.jobQueue)
	}
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
