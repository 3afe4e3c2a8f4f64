package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aryan192003/Chatify-backend/internal/logger"
)

func TestClient_EnqueueAfterCloseIsRejected(t *testing.T) {
	c := NewClient("u1", nil)
	c.Close()

	// Must report failure, never send on the closed channel.
	assert.False(t, c.Enqueue(Envelope{Event: EventAlert, Data: "hi"}))
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := NewClient("u1", nil)
	c.Close()
	c.Close()
}

func TestClient_RouteRacingDisconnectDoesNotPanic(t *testing.T) {
	r := NewRegistry()
	router := NewRouter(r, logger.Nop())

	// A route can resolve a client just before its disconnect teardown
	// unregisters and closes it. The enqueue must lose the race cleanly.
	for i := 0; i < 1000; i++ {
		c := NewClient("u1", nil)
		r.Register("u1", c)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			router.Route(EventRefetchChats, []string{"u1"}, nil)
		}()
		go func() {
			defer wg.Done()
			r.Unregister("u1", c)
			c.Close()
		}()
		wg.Wait()
	}
}
