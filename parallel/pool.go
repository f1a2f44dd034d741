// Package parallel provides a persistent worker pool for dispatching
// row-range kernels across the simulation fields.
package parallel

import (
	"runtime"
	"sync"
)

// serialThreshold is the minimum row count to use parallel dispatch. Below
// this, single-threaded is faster due to channel overhead.
const serialThreshold = 32

// rowChunk represents a range of rows for a worker to process.
type rowChunk struct {
	start, end int
}

// Pool dispatches kernels over row ranges using persistent workers. A kernel
// must only write to the rows it is handed; reads may touch any row of the
// source buffers.
type Pool struct {
	numWorkers int

	mu       sync.Mutex
	kernel   func(y int)
	workChan chan rowChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// NewPool creates a pool with one worker per available CPU.
func NewPool() *Pool {
	return &Pool{numWorkers: runtime.GOMAXPROCS(0)}
}

// Rows invokes kernel(y) for every y in [0, rows), splitting the range among
// workers. It returns once every row has been processed.
func (p *Pool) Rows(rows int, kernel func(y int)) {
	if rows <= 0 {
		return
	}
	if rows < serialThreshold || p.numWorkers < 2 {
		for y := 0; y < rows; y++ {
			kernel(y)
		}
		return
	}

	// One dispatch at a time; the pipeline is strictly ordered anyway.
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		p.start()
	}
	p.kernel = kernel

	chunkSize := (rows + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > rows {
			end = rows
		}
		if start >= end {
			continue
		}
		p.workChan <- rowChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
	p.kernel = nil
}

// start launches the persistent worker goroutines.
func (p *Pool) start() {
	p.workChan = make(chan rowChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			for y := chunk.start; y < chunk.end; y++ {
				p.kernel(y)
			}
			p.doneChan <- struct{}{}
		}
	}
}

// Close signals all workers to exit and waits for them. The pool is reusable
// after Close; the next Rows call restarts the workers.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}
