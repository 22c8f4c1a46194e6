// Package connectivity tracks the process-wide online/offline state and
// derives the advisory banner shown when dependent subsystems are down.
package connectivity

import (
	"context"
	"fmt"
	"sync"

	"stayauth/internal/domain"

	"go.uber.org/zap"
)

// Event is a platform connectivity signal. It carries no payload.
type Event string

const (
	EventOnline  Event = "online"
	EventOffline Event = "offline"
)

// ParseEvent validates an event name received from a client
func ParseEvent(s string) (Event, error) {
	switch Event(s) {
	case EventOnline, EventOffline:
		return Event(s), nil
	default:
		return "", fmt.Errorf("unknown connectivity event %q", s)
	}
}

// Observer is notified on each state transition
type Observer interface {
	OnConnectivityChange(state domain.ConnectivityState)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(state domain.ConnectivityState)

func (f ObserverFunc) OnConnectivityChange(state domain.ConnectivityState) { f(state) }

// Monitor holds the online/offline flag and fans transitions out to observers.
// Observers must not publish from their callback.
type Monitor struct {
	// publishMu serializes Publish so observers see transitions in the
	// order the state changed
	publishMu sync.Mutex

	mu        sync.RWMutex
	state     domain.ConnectivityState
	observers []Observer
	logger    *zap.Logger
}

// NewMonitor creates a monitor in the online state
func NewMonitor(logger *zap.Logger) *Monitor {
	return &Monitor{
		state:  domain.Online,
		logger: logger,
	}
}

// Subscribe registers an observer for future transitions
func (m *Monitor) Subscribe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// State returns the current connectivity state
func (m *Monitor) State() domain.ConnectivityState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Publish applies an event. Observers are notified only when the state
// actually changes, synchronously and in subscription order.
func (m *Monitor) Publish(event Event) error {
	next := domain.Online
	switch event {
	case EventOnline:
	case EventOffline:
		next = domain.Offline
	default:
		return fmt.Errorf("unknown connectivity event %q", event)
	}

	m.publishMu.Lock()
	defer m.publishMu.Unlock()

	m.mu.Lock()
	if m.state == next {
		m.mu.Unlock()
		return nil
	}
	m.state = next
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	m.logger.Info("Connectivity changed", zap.String("state", string(next)))
	for _, o := range observers {
		o.OnConnectivityChange(next)
	}
	return nil
}

// Run consumes events until ctx is done or the channel is closed
func (m *Monitor) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := m.Publish(event); err != nil {
				m.logger.Warn("Ignoring connectivity event", zap.Error(err))
			}
		}
	}
}
