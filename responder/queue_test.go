package responder

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFragmentQueue_OrderPreserved(t *testing.T) {
	q := &fragmentQueue{}
	for i := 0; i < 5; i++ {
		q.Push(fmt.Sprintf("f%d", i))
	}
	assert.Equal(t, 5, q.Len())
	assert.Equal(t, []string{"f0", "f1", "f2", "f3", "f4"}, q.DrainAll())
	assert.Equal(t, 0, q.Len())
	assert.Empty(t, q.DrainAll())
}

func TestFragmentQueue_PushWhileDraining(t *testing.T) {
	q := &fragmentQueue{}
	const n = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Push("x")
		}
	}()

	var drained int
	for drained < n {
		drained += len(q.DrainAll())
	}
	wg.Wait()
	assert.Equal(t, n, drained)
	assert.Equal(t, 0, q.Len())
}
