package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()
	var countA, countB int
	counters := map[string]*int{"a": &countA, "b": &countB}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		for _, key := range []string{"a", "b"} {
			wg.Add(1)
			go func(k string) {
				defer wg.Done()
				km.Lock(k)
				defer km.Unlock(k)
				*counters[k]++
			}(key)
		}
	}
	wg.Wait()

	assert.Equal(t, 100, countA)
	assert.Equal(t, 100, countB)
}

func TestKeyedMutexUnlockUnknownKeyIsNoop(t *testing.T) {
	km := NewKeyedMutex()
	assert.NotPanics(t, func() { km.Unlock("never-locked") })
}
