package impulse

import "sync"

// task splits data in workersCount chunks and calls fn on every element, one goroutine
// per chunk. fn must only touch its own element.
func task[T any](workersCount int, data []T, fn func(data T)) {
	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, dataSize)
		if start >= end {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}()
	}
	wg.Wait()
}
