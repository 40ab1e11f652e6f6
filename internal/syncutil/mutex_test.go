// Copyright 2016 Aleksandr Demakin. All rights reserved.

package syncutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutexCounter(t *testing.T) {
	var mut Mutex
	var wg sync.WaitGroup
	value := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				mut.Lock()
				value++
				mut.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8000, value)
}

func TestRWMutexReaders(t *testing.T) {
	var mut RWMutex
	mut.RLock()
	mut.RLock()
	mut.RUnlock()
	mut.RUnlock()
	mut.Lock()
	mut.Unlock()
}
