package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession is a test double for Client that records what it is sent
type fakeSession struct {
	id       string
	ownerID  uuid.UUID
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	reject   bool
}

func newFakeSession(id string, ownerID uuid.UUID) *fakeSession {
	return &fakeSession{id: id, ownerID: ownerID}
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) OwnerID() uuid.UUID { return f.ownerID }

func (f *fakeSession) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClientClosed
	}
	if f.reject {
		return ErrSlowClient
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.messages))
	copy(out, f.messages)
	return out
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	alice, bob := uuid.New(), uuid.New()

	s1 := newFakeSession("s1", alice)
	s2 := newFakeSession("s2", alice)
	s3 := newFakeSession("s3", bob)

	hub.Register(s1)
	hub.Register(s2)
	hub.Register(s3)

	assert.Equal(t, 2, hub.ClientCount(alice))
	assert.Equal(t, 1, hub.ClientCount(bob))
	assert.Equal(t, 0, hub.ClientCount(uuid.New()))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(s1)
	assert.Equal(t, 1, hub.ClientCount(alice))

	hub.Unregister(s2)
	hub.Unregister(s3)
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_OwnerIsolation(t *testing.T) {
	hub := NewHub()
	alice, bob := uuid.New(), uuid.New()

	phone := newFakeSession("phone", alice)
	laptop := newFakeSession("laptop", alice)
	other := newFakeSession("other", bob)
	hub.Register(phone)
	hub.Register(laptop)
	hub.Register(other)

	delivered := hub.Broadcast(alice, TransactionCreated(map[string]string{"name": "Lunch"}))

	assert.Equal(t, 2, delivered)
	assert.Len(t, phone.received(), 1)
	assert.Len(t, laptop.received(), 1)
	assert.Empty(t, other.received(), "another owner's session must not see the event")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(phone.received()[0], &decoded))
	assert.Equal(t, "transaction.created", decoded["type"])
}

func TestHub_Broadcast_DropsRejectingClient(t *testing.T) {
	hub := NewHub()
	owner := uuid.New()

	healthy := newFakeSession("healthy", owner)
	slow := newFakeSession("slow", owner)
	slow.reject = true
	hub.Register(healthy)
	hub.Register(slow)

	delivered := hub.Broadcast(owner, SummaryStale())

	assert.Equal(t, 1, delivered)
	assert.True(t, slow.isClosed())
	assert.False(t, healthy.isClosed())
	assert.Equal(t, 1, hub.ClientCount(owner))
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()
	owners := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	const sessionCount = 30
	sessions := make([]*fakeSession, sessionCount)
	for i := range sessions {
		sessions[i] = newFakeSession(fmt.Sprintf("s-%d", i), owners[i%len(owners)])
	}

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *fakeSession) {
			defer wg.Done()
			hub.Register(s)
		}(s)
	}
	wg.Wait()
	assert.Equal(t, sessionCount, hub.TotalClientCount())

	for i, s := range sessions {
		wg.Add(2)
		go func(owner uuid.UUID) {
			defer wg.Done()
			hub.Broadcast(owner, TransactionCreated(nil))
		}(owners[i%len(owners)])
		go func(s *fakeSession) {
			defer wg.Done()
			hub.Unregister(s)
		}(s)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_EdgeCases(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Unregister(newFakeSession("ghost", uuid.New()))
	})
	assert.Equal(t, 0, hub.Broadcast(uuid.New(), TransactionCreated(nil)))
}

func TestHub_Publish(t *testing.T) {
	hub := NewHub()
	owner := uuid.New()
	s := newFakeSession("s", owner)
	hub.Register(s)

	var publisher EventPublisher = hub
	publisher.Publish(owner, TransactionCreated(map[string]string{"id": "x"}))

	assert.Len(t, s.received(), 1)
}
