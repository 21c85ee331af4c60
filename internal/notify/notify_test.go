package notify

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(q *Queue, t0 time.Time) *time.Time {
	now := t0
	q.now = func() time.Time { return now }
	return &now
}

func TestPushDrainShowsOnce(t *testing.T) {
	q := NewQueue(time.Minute, 5)
	q.Open("s1")

	first := q.Push("s1", Success("Item Created", "The item has been successfully created."))
	q.Push("s1", Error("Delete Failed", "Request failed. Status: 500"))

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, 2, q.Pending("s1"))

	got := q.Drain("s1")
	require.Len(t, got, 2)
	assert.Equal(t, "Item Created", got[0].Title)
	assert.Equal(t, KindError, got[1].Kind)

	assert.Empty(t, q.Drain("s1"))
}

func TestSessionsAreIsolated(t *testing.T) {
	q := NewQueue(time.Minute, 5)
	q.Push("a", Info("hello", ""))

	assert.Empty(t, q.Drain("b"))
	assert.Len(t, q.Drain("a"), 1)
}

func TestPushDropsOldestWhenFull(t *testing.T) {
	q := NewQueue(time.Minute, 3)
	for i := 0; i < 5; i++ {
		q.Push("s", Info(strconv.Itoa(i), ""))
	}

	got := q.Drain("s")
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].Title)
	assert.Equal(t, "4", got[2].Title)
}

func TestDismiss(t *testing.T) {
	q := NewQueue(time.Minute, 5)
	n := q.Push("s", Info("one", ""))
	q.Push("s", Info("two", ""))

	assert.True(t, q.Dismiss("s", n.ID))
	assert.False(t, q.Dismiss("s", n.ID))
	got := q.Drain("s")
	require.Len(t, got, 1)
	assert.Equal(t, "two", got[0].Title)
}

func TestCloseDropsPending(t *testing.T) {
	q := NewQueue(time.Minute, 5)
	q.Push("s", Info("one", ""))
	q.Close("s")

	assert.Equal(t, 0, q.Sessions())
	assert.Empty(t, q.Drain("s"))
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	q := NewQueue(10*time.Minute, 5)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := fixedClock(q, t0)

	q.Open("idle")
	*now = t0.Add(8 * time.Minute)
	q.Open("active")

	assert.Equal(t, 1, q.Sweep(t0.Add(11*time.Minute)))
	assert.Equal(t, 1, q.Sessions())

	// Drain refreshes the session.
	*now = t0.Add(15 * time.Minute)
	q.Drain("active")
	assert.Equal(t, 0, q.Sweep(t0.Add(20*time.Minute)))
}

func TestQueueConcurrentUse(t *testing.T) {
	q := NewQueue(time.Minute, 100)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "s" + strconv.Itoa(i%2)
			for j := 0; j < 50; j++ {
				q.Push(id, Info("x", ""))
				q.Drain(id)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 2, q.Sessions())
}

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper(NewQueue(0, 0), "every tuesday")
	assert.Error(t, err)
}

func TestSweeperStopsWithContext(t *testing.T) {
	s, err := NewSweeper(NewQueue(0, 0), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
