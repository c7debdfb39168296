package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/jungianjournals/journals-backend/types"
)

// MockPublisher is an in-memory types.ActivityPublisher for tests.
type MockPublisher struct {
	mu            sync.RWMutex
	activities    []types.Activity
	subscriptions map[string]chan types.Activity
	closed        bool
	PublishErr    error
}

// NewMockPublisher creates a new mock publisher for testing
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		subscriptions: make(map[string]chan types.Activity),
	}
}

var _ types.ActivityPublisher = (*MockPublisher)(nil)

// Publish records an activity and forwards it to subscribers.
func (m *MockPublisher) Publish(_ context.Context, activity types.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("publisher is closed")
	}
	if m.PublishErr != nil {
		return m.PublishErr
	}

	m.activities = append(m.activities, activity)
	for _, ch := range m.subscriptions {
		select {
		case ch <- activity:
		default:
		}
	}
	return nil
}

// Subscribe registers a buffered channel for subscriberID.
func (m *MockPublisher) Subscribe(_ context.Context, subscriberID string, _ ...types.ActivityType) (<-chan types.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("publisher is closed")
	}
	if _, exists := m.subscriptions[subscriberID]; exists {
		return nil, fmt.Errorf("subscription already exists for %s", subscriberID)
	}
	ch := make(chan types.Activity, 16)
	m.subscriptions[subscriberID] = ch
	return ch, nil
}

// Unsubscribe closes and removes the subscriber's channel.
func (m *MockPublisher) Unsubscribe(_ context.Context, subscriberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, exists := m.subscriptions[subscriberID]
	if !exists {
		return fmt.Errorf("no subscription found for %s", subscriberID)
	}
	close(ch)
	delete(m.subscriptions, subscriberID)
	return nil
}

// Recent returns the newest activities first.
func (m *MockPublisher) Recent(_ context.Context, limit int) ([]types.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Activity, 0, limit)
	for i := len(m.activities) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.activities[i])
	}
	return out, nil
}

// Published returns a copy of everything published so far.
func (m *MockPublisher) Published() []types.Activity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Activity, len(m.activities))
	copy(out, m.activities)
	return out
}

// SubscriberCount reports the number of open subscriptions.
func (m *MockPublisher) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close shuts the publisher and all subscriber channels.
func (m *MockPublisher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for id, ch := range m.subscriptions {
		close(ch)
		delete(m.subscriptions, id)
	}
}
