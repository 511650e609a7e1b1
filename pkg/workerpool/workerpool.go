// Package workerpool runs independent tasks on a fixed number of workers.
package workerpool

import "sync"

// Pool fans submitted tasks out to a bounded set of worker goroutines.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// New starts a pool with the given number of workers.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{tasks: make(chan func())}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit queues a task. Tasks must be safe to run concurrently with each
// other. Submit must not be called after Wait.
func (p *Pool) Submit(task func()) {
	p.tasks <- task
}

// Wait closes the queue and blocks until every submitted task has finished.
func (p *Pool) Wait() {
	close(p.tasks)
	p.wg.Wait()
}
