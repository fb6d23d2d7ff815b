package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/aryan0dhankhar/workshop/internal/infrastructure/events"
	"github.com/aryan0dhankhar/workshop/internal/repository"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func newStore() *repository.MemoryStore {
	return repository.NewMemoryStore(repository.DefaultFixtures())
}

func emptyStore() *repository.MemoryStore {
	return repository.NewMemoryStore(repository.Fixtures{})
}

var errBrokerDown = errors.New("broker down")
