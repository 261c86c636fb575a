package events

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-dashboard-api/internal/models"
)

func newMemoryQueue(t *testing.T, maxEvents int) *Queue {
	t.Helper()
	q, err := NewQueue(Config{MaxEvents: maxEvents})
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func TestQueue_PublishAssignsDenseOffsets(t *testing.T) {
	// Arrange
	q := newMemoryQueue(t, 100)

	// Act
	q.Publish(models.EventProductCreated, 1, nil)
	q.Publish(models.EventStockUpdated, 4, map[string]int{"quantity": 3})
	q.Publish(models.EventTransferCreated, 2, nil)
	events, next, hasMore := q.Events(0, 10)

	// Assert
	require.Len(t, events, 3)
	for i, event := range events {
		assert.Equal(t, int64(i), event.Offset)
		assert.NotEmpty(t, event.ID)
	}
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.Equal(t, models.EventStockUpdated, events[1].EventType)
	assert.Equal(t, 4, events[1].EntityID)
	assert.Equal(t, int64(3), next)
	assert.False(t, hasMore)
	assert.Equal(t, int64(3), q.CurrentOffset())
}

func TestQueue_EventsPaging(t *testing.T) {
	// Arrange
	q := newMemoryQueue(t, 100)
	for i := 0; i < 5; i++ {
		q.Publish(models.EventProductUpdated, i, nil)
	}

	testCases := []struct {
		name        string
		from        int64
		limit       int
		wantOffsets []int64
		wantNext    int64
		wantHasMore bool
	}{
		{"first page", 0, 2, []int64{0, 1}, 2, true},
		{"middle page", 2, 2, []int64{2, 3}, 4, true},
		{"last page", 4, 2, []int64{4}, 5, false},
		{"caught up", 5, 2, []int64{}, 5, false},
		{"ahead of the feed", 42, 2, []int64{}, 5, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			events, next, hasMore := q.Events(tc.from, tc.limit)

			// Assert
			offsets := make([]int64, 0, len(events))
			for _, e := range events {
				offsets = append(offsets, e.Offset)
			}
			assert.Equal(t, tc.wantOffsets, offsets)
			assert.Equal(t, tc.wantNext, next)
			assert.Equal(t, tc.wantHasMore, hasMore)
		})
	}
}

func TestQueue_RotatesWhenFull(t *testing.T) {
	// Arrange
	q := newMemoryQueue(t, 8)

	// Act
	for i := 0; i < 9; i++ {
		q.Publish(models.EventStockUpdated, i, nil)
	}
	events, _, _ := q.Events(0, 100)

	// Assert
	require.Len(t, events, 6)
	assert.Equal(t, int64(3), events[0].Offset, "offsets survive rotation")
	assert.Equal(t, int64(9), q.CurrentOffset())
}

func TestQueue_WaitWakesOnPublish(t *testing.T) {
	// Arrange
	q := newMemoryQueue(t, 100)
	done := make(chan bool, 1)

	// Act
	go func() {
		done <- q.Wait(context.Background(), 0, 5*time.Second)
	}()
	time.Sleep(20 * time.Millisecond)
	q.Publish(models.EventAlertCreated, 1, nil)

	// Assert
	select {
	case got := <-done:
		assert.True(t, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after publish")
	}
}

func TestQueue_WaitTimesOutAndHonorsContext(t *testing.T) {
	// Arrange
	q := newMemoryQueue(t, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	timedOut := q.Wait(context.Background(), 0, 10*time.Millisecond)
	canceled := q.Wait(ctx, 0, time.Minute)

	// Assert
	assert.False(t, timedOut)
	assert.False(t, canceled)
}

func TestQueue_PersistsAcrossRestart(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "events", "events.json")
	q, err := NewQueue(Config{FilePath: path, MaxEvents: 100})
	require.NoError(t, err)
	q.Publish(models.EventProductCreated, 1, nil)
	q.Publish(models.EventProductCreated, 2, nil)
	require.NoError(t, q.Close())

	// Act
	reopened, err := NewQueue(Config{FilePath: path, MaxEvents: 100})
	require.NoError(t, err)
	defer reopened.Close()
	reopened.Publish(models.EventProductDeleted, 1, nil)
	events, _, _ := reopened.Events(0, 10)

	// Assert
	require.Len(t, events, 3)
	assert.Equal(t, int64(2), events[2].Offset)
	assert.Equal(t, models.EventProductDeleted, events[2].EventType)
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	// Arrange
	q, err := NewQueue(Config{})
	require.NoError(t, err)

	// Act & Assert
	assert.NoError(t, q.Close())
	assert.NoError(t, q.Close())
}
