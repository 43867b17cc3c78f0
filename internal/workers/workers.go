// Package workers runs the background janitors: the one that cancels
// abandoned recording conversations and the one that clears stale
// authorization requests. Each janitor wakes on a shared interval and exits
// when the context is cancelled.
package workers

import (
	"context"
	"sync"
)

// Worker is one background loop. Run blocks until ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}

type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run launches every worker and blocks until all of them have returned.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, worker := range w.workers {
		wg.Add(1)
		go func(worker Worker) {
			defer wg.Done()
			worker.Run(ctx)
		}(worker)
	}
	wg.Wait()
}
