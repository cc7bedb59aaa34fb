package eventlog

import (
	"srtrack/internal/models"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_DropsWhenFull(t *testing.T) {
	q := NewQueue(2)
	assert.True(t, q.Offer(models.LogEvent{CreatedAt: 1}))
	assert.True(t, q.Offer(models.LogEvent{CreatedAt: 2}))
	assert.False(t, q.Offer(models.LogEvent{CreatedAt: 3}))
	assert.EqualValues(t, 1, q.Dropped())

	drained := q.Drain()
	assert.Len(t, drained, 2)
	assert.Empty(t, q.Drain())
}

func TestQueue_ConcurrentProducer(t *testing.T) {
	q := NewQueue(1000)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			q.Offer(models.LogEvent{CreatedAt: int64(i)})
		}
	}()

	total := 0
	for total < 500 {
		total += len(q.Drain())
	}
	wg.Wait()
	assert.Equal(t, 500, total)
	assert.Zero(t, q.Dropped())
}
