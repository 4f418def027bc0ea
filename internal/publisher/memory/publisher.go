// Package memory records scrape-completed events in process, standing
// in for Pub/Sub during tests and local development.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// Publisher accumulates events so tests can assert on what a scrape
// emitted.
type Publisher struct {
	mu       sync.RWMutex
	messages []PublishedMessage
}

// PublishedMessage captures one emitted scrape event.
type PublishedMessage struct {
	Topic   string
	Payload any
}

// New returns an empty in-process recorder.
func New() *Publisher {
	return &Publisher{}
}

// Publish appends the event and returns a synthetic message ID.
func (p *Publisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, PublishedMessage{Topic: topic, Payload: payload})
	return fmt.Sprintf("memory-%d", len(p.messages)), nil
}

// Messages returns a copy of everything published so far.
func (p *Publisher) Messages() []PublishedMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]PublishedMessage, len(p.messages))
	copy(out, p.messages)
	return out
}
