package notify

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seodash/ports"
)

func TestFeedNewestFirst(t *testing.T) {
	feed := NewFeed(10, nil)
	ctx := context.Background()

	feed.Notify(ctx, ports.NotificationSuccess, "Successfully imported 4 records")
	feed.Notify(ctx, ports.NotificationError, "Failed to parse the uploaded file")

	recent := feed.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, ports.NotificationError, recent[0].Level)
	assert.Equal(t, "Successfully imported 4 records", recent[1].Message)
	assert.NotEqual(t, recent[0].ID, recent[1].ID)
	assert.False(t, recent[0].ID.IsEmpty())
}

func TestFeedHistoryCap(t *testing.T) {
	feed := NewFeed(3, nil)
	for i := 0; i < 5; i++ {
		feed.Notify(context.Background(), ports.NotificationInfo, fmt.Sprintf("message %d", i))
	}

	recent := feed.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "message 4", recent[0].Message)
	assert.Equal(t, "message 2", recent[2].Message)

	feed.Clear()
	assert.Empty(t, feed.Recent())
}

func TestFeedConcurrentNotify(t *testing.T) {
	feed := NewFeed(1000, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			feed.Notify(context.Background(), ports.NotificationInfo, "tick")
		}()
	}
	wg.Wait()

	assert.Len(t, feed.Recent(), 50)
}
