// Package async provides a small worker pool for fanning out independent
// fetches and collecting their results by task name.
package async

import (
	"context"
	"sync"
)

// Task is one unit of work. Execute captures whatever context and inputs it
// needs in its closure.
type Task struct {
	Name    string
	Execute func() (interface{}, error)
}

// Result carries one task's outcome.
type Result struct {
	Data  interface{}
	Error error
}

// Pool bounds how many tasks run at once.
type Pool struct {
	workerCount int
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

// Execute runs the tasks across the pool's workers and returns results keyed
// by task name. A canceled context stops dispatching; tasks that never ran
// are absent from the result map.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]Result, len(tasks))
	)

	sem := make(chan struct{}, p.workerCount)

	for _, task := range tasks {
		select {
		case <-ctx.Done():
			wg.Wait()
			return results
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(task Task) {
			defer wg.Done()
			defer func() { <-sem }()

			data, err := task.Execute()

			mu.Lock()
			results[task.Name] = Result{Data: data, Error: err}
			mu.Unlock()
		}(task)
	}

	wg.Wait()
	return results
}
