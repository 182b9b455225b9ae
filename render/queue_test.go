package render

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_SwapAndClear(t *testing.T) {
	q := NewQueue(4)
	q.Push(Label(1, 2, "a", 8, White))
	q.Push(Marker(3, 4, 10, Goldenrod))
	require.Equal(t, 2, q.Len())

	frame := q.Swap(nil)
	require.Len(t, frame, 2)
	assert.Equal(t, "a", frame[0].Label)
	assert.Equal(t, Circle, frame[1].Style)
	assert.Equal(t, 0, q.Len())

	// nothing is delivered twice
	assert.Empty(t, q.Swap(nil))
}

func TestQueue_DoubleBuffer(t *testing.T) {
	q := NewQueue(4)
	var front, back []DrawInstruction

	q.Push(Label(0, 0, "first", 8, White))
	front = q.Swap(back)
	require.Len(t, front, 1)

	q.Push(Label(0, 0, "second", 8, White))
	back = q.Swap(front)
	require.Len(t, back, 1)
	assert.Equal(t, "second", back[0].Label)
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue(0)

	const producers, each = 8, 500
	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				q.Push(Marker(float64(i), 0, 8, Green))
			}
		}()
	}

	total := 0
	var buf []DrawInstruction
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for finished := false; !finished; {
		select {
		case <-done:
			finished = true
		default:
		}
		buf = q.Swap(buf)
		total += len(buf)
	}

	assert.Equal(t, producers*each, total)
}

func TestStyleString(t *testing.T) {
	assert.Equal(t, "box", Box.String())
	assert.Equal(t, "style(9)", Style(9).String())
	assert.Contains(t, Frame(1, 2, 3, 4, Red).String(), "#ff0000")
}
