package utils

import "sync"

type CompletedTask[T any] struct {
	Result T
	Error  error
}

// RunInPool drains queue with up to maxWorkers goroutines and sends one
// CompletedTask per item to completed. The queue must be closed by the caller;
// completed is closed once every item has been processed. RunInPool does not
// block.
func RunInPool[In any, Out any](worker func(In) (Out, error), queue chan In, completed chan CompletedTask[Out], maxWorkers int) {
	workers := max(min(len(queue), maxWorkers), 1)

	go func() {
		var wg sync.WaitGroup
		wg.Add(workers)

		for range workers {
			go func() {
				defer wg.Done()

				for next := range queue {
					res, err := worker(next)
					if err != nil {
						completed <- CompletedTask[Out]{Error: err}
						continue
					}
					completed <- CompletedTask[Out]{Result: res}
				}
			}()
		}

		wg.Wait()

		close(completed)
	}()
}
