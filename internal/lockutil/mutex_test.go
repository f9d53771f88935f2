package lockutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutexSerializesConcurrentIncrements(t *testing.T) {
	var mu Mutex
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu.Lock()
			counter++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}
