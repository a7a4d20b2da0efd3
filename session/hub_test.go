package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "feed closed")
		return c
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
	return Change{}
}

func TestHub_PublishReachesOnlyThatUser(t *testing.T) {
	h := NewHub()
	a, stopA := h.Subscribe("a", "t1")
	defer stopA()
	b, stopB := h.Subscribe("b", "t2")
	defer stopB()

	assert.Equal(t, 1, h.Publish("a", Change{Kind: SignedOut}))

	got := recv(t, a)
	assert.Equal(t, SignedOut, got.Kind)
	assert.False(t, got.At.IsZero())
	select {
	case c := <-b:
		t.Fatalf("b got %v", c)
	default:
	}
}

func TestHub_TokenScopedChange(t *testing.T) {
	h := NewHub()
	one, stop1 := h.Subscribe("a", "t1")
	defer stop1()
	two, stop2 := h.Subscribe("a", "t2")
	defer stop2()

	assert.Equal(t, 1, h.Publish("a", Change{Kind: TokenRefreshed, token: "t1", rotate: "t3"}))
	assert.Equal(t, TokenRefreshed, recv(t, one).Kind)
	select {
	case c := <-two:
		t.Fatalf("t2 feed got %v", c)
	default:
	}

	// the first feed now follows t3
	assert.Equal(t, 0, h.Publish("a", Change{Kind: TokenRefreshed, token: "t1"}))
	assert.Equal(t, 1, h.Publish("a", Change{Kind: TokenRefreshed, token: "t3"}))
	recv(t, one)

	// unscoped changes reach both
	assert.Equal(t, 2, h.Publish("a", Change{Kind: SignedOut}))
}

func TestHub_UnsubscribeClosesAndIsIdempotent(t *testing.T) {
	h := NewHub()
	ch, stop := h.Subscribe("a", "t1")
	require.Equal(t, 1, h.Subscribers("a"))

	stop()
	stop()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers("a"))
	assert.Equal(t, 0, h.Publish("a", Change{Kind: SignedOut}))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	_, stop := h.Subscribe("a", "t1")
	defer stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			h.Publish("a", Change{Kind: TokenRefreshed})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestHub_CloseEndsFeeds(t *testing.T) {
	h := NewHub()
	ch, stop := h.Subscribe("a", "t1")
	h.Close()
	stop()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := h.Subscribe("a", "t1")
	_, ok = <-late
	assert.False(t, ok, "subscribe after close should give a closed feed")
}

func TestHub_ConcurrentUse(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch, stop := h.Subscribe("a", "t1")
			h.Publish("a", Change{Kind: SignedOut})
			select {
			case <-ch:
			case <-time.After(100 * time.Millisecond):
			}
			stop()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Subscribers("a"))
}
