package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/scrapeworks/scrapeworks-mcp/internal/logging"
)

func TestCloseAll_WaitsForAllSessions(t *testing.T) {
	a, at := newTestSession("a")
	b, bt := newTestSession("b")
	c, ct := newTestSession("c")

	closeAll(context.Background(), []*Session{a, b, c}, logging.NewNop())

	assert.Equal(t, int32(1), at.closed.Load())
	assert.Equal(t, int32(1), bt.closed.Load())
	assert.Equal(t, int32(1), ct.closed.Load())
}

func TestCloseAll_HangingCloseDoesNotBlockPastDeadline(t *testing.T) {
	a, at := newTestSession("a")
	b, bt := newTestSession("b")
	wedged, _ := newTestSession("wedged")
	wedged.transport.(*fakeTransport).block = make(chan struct{})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	closeAll(ctx, []*Session{a, wedged, b}, logging.NewNop())
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second, "ceiling bounds the drain")
	assert.Equal(t, int32(1), at.closed.Load())
	assert.Equal(t, int32(1), bt.closed.Load())
}

func TestCloseAll_Empty(t *testing.T) {
	done := make(chan struct{})
	go func() {
		closeAll(context.Background(), nil, logging.NewNop())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("closeAll blocked with no sessions")
	}
}
