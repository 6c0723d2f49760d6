package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialTagGenerator_Sequence(t *testing.T) {
	gen := NewSequentialTagGenerator("list")

	assert.Equal(t, "list-1", gen.Generate())
	assert.Equal(t, "list-2", gen.Generate())
	assert.Equal(t, int64(2), gen.Issued())
}

func TestSequentialTagGenerator_DefaultPrefix(t *testing.T) {
	gen := NewSequentialTagGenerator("")
	assert.Equal(t, "owner-1", gen.Generate())
}

func TestSequentialTagGenerator_Reset(t *testing.T) {
	gen := NewSequentialTagGenerator("owner")
	gen.Generate()
	gen.Generate()

	gen.Reset()
	assert.Equal(t, int64(0), gen.Issued())
	assert.Equal(t, "owner-1", gen.Generate())
}

func TestSequentialTagGenerator_ThreadSafe(t *testing.T) {
	gen := NewSequentialTagGenerator("owner")
	const goroutines = 20
	const perGoroutine = 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				tag := gen.Generate()
				mu.Lock()
				seen[tag] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, goroutines*perGoroutine, "tags never repeat")
	assert.Equal(t, int64(goroutines*perGoroutine), gen.Issued())
}

func TestDiscardLogger(t *testing.T) {
	l := DiscardLogger()
	require.NotNil(t, l)
	l.Info("dropped")
}
