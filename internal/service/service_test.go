package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"noet-be/internal/pkg/logger"
	"noet-be/internal/repository/unitofwork"
	"noet-be/pkg/events"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ChangeEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	factory    unitofwork.RepositoryFactory
	publisher  *recordingPublisher
	notes      INoteService
	ctx        context.Context
	userId     string
	collection func(policy string) ICollectionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		factory:   unitofwork.NewRepositoryFactory(t.TempDir()),
		publisher: &recordingPublisher{},
		ctx:       context.Background(),
		userId:    "alice",
	}
	f.notes = NewNoteService(f.factory, f.publisher, nil)
	f.collection = func(policy string) ICollectionService {
		return NewCollectionService(f.factory, f.publisher, nopLogger(), nil, policy)
	}
	return f
}

func rawJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func nopLogger() logger.ILogger {
	return logger.NewNopLogger()
}
