package evolution

import "sync"

// parallelize runs fn(i) for every i in [0, pieces) on a fixed pool of
// workers and returns once all of them have finished. Each call of fn must
// write only to its own slot.
func parallelize(workers, pieces int, fn func(i int)) {
	if pieces <= 0 {
		return
	}
	if workers > pieces {
		workers = pieces
	}
	if workers <= 1 {
		for i := 0; i < pieces; i++ {
			fn(i)
		}
		return
	}

	workChan := make(chan int, pieces)
	wg := &sync.WaitGroup{}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workChan {
				fn(i)
			}
		}()
	}

	for i := 0; i < pieces; i++ {
		workChan <- i
	}
	close(workChan)
	wg.Wait()
}
