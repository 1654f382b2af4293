package stark

import (
	"runtime"
	"sync"
)

// Executor runs a set of independent jobs, possibly concurrently.
// The table fill phase is shared-nothing (fragments own disjoint row ranges),
// so any executor is safe; the choice only affects scheduling.
type Executor interface {
	// Run runs all jobs and returns once every job has completed.
	Run(jobs []func())
}

// SequentialExecutor runs jobs one after another on the calling goroutine.
type SequentialExecutor struct{}

// Run implements the Executor interface.
func (SequentialExecutor) Run(jobs []func()) {
	for _, job := range jobs {
		job()
	}
}

// WorkerPoolExecutor runs jobs over a pool of goroutines.
type WorkerPoolExecutor struct {
	// Workers is the pool size. If not positive, runtime.NumCPU() is used.
	Workers int
}

// Run implements the Executor interface.
func (e WorkerPoolExecutor) Run(jobs []func()) {
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(jobs))

	jobChan := make(chan func())
	go func() {
		defer close(jobChan)
		for _, job := range jobs {
			jobChan <- job
		}
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for job := range jobChan {
				job()
			}
		}()
	}
	wg.Wait()
}
