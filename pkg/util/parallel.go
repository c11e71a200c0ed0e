package util

import (
	"context"
	"errors"
	"sync"
)

// Parallel calls fn for every input on at most workerLimit goroutines.
// Every input is processed even when some fail; the returned error joins
// all failures in no particular order.
func Parallel[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) error {
	if len(inputs) == 0 {
		return nil
	}

	if workerLimit <= 0 {
		workerLimit = 1
	}
	workerLimit = min(workerLimit, len(inputs))

	tasks := make(chan T)

	var (
		mu   sync.Mutex
		errs []error
	)

	// workers
	wg := sync.WaitGroup{}
	for i := 0; i < workerLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if err := fn(ctx, item); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}

	// feed tasks
	for _, item := range inputs {
		tasks <- item
	}
	close(tasks)

	wg.Wait()
	return errors.Join(errs...)
}
