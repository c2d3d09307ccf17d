package docstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local mode.
// Watch streams are fanned out to every subscriber of a collection.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
	watchers    map[string]map[string]chan Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string][]byte),
		watchers:    make(map[string]map[string]chan Event),
	}
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setLocked(collection, id, data)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteLocked(collection, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, collection string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make(map[string][]byte, len(s.collections[collection]))
	for id, data := range s.collections[collection] {
		docs[id] = append([]byte(nil), data...)
	}
	return docs, nil
}

func (s *MemoryStore) ApplyBatch(ctx context.Context, ops []Op) error {
	if len(ops) > MaxBatchOps {
		return ErrBatchTooLarge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range ops {
		switch op.Kind {
		case OpSet:
			s.setLocked(op.Collection, op.ID, op.Data)
		case OpDelete:
			s.deleteLocked(op.Collection, op.ID)
		}
	}
	return nil
}

func (s *MemoryStore) Watch(ctx context.Context, collection string) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watchers[collection] == nil {
		s.watchers[collection] = make(map[string]chan Event)
	}

	id := uuid.New().String()
	events := make(chan Event, 64)
	s.watchers[collection][id] = events

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers[collection], id)
		close(events)
	}()

	return events, nil
}

func (s *MemoryStore) setLocked(collection, id string, data []byte) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string][]byte)
	}
	stored := append([]byte(nil), data...)
	s.collections[collection][id] = stored
	s.notifyLocked(Event{Collection: collection, ID: id, Data: stored})
}

func (s *MemoryStore) deleteLocked(collection, id string) {
	delete(s.collections[collection], id)
	s.notifyLocked(Event{Collection: collection, ID: id, Deleted: true})
}

func (s *MemoryStore) notifyLocked(event Event) {
	for _, events := range s.watchers[event.Collection] {
		select {
		case events <- event:
		default:
			// Slow subscriber - drop rather than block writers. The
			// authoritative state is always re-readable via Get/List.
		}
	}
}
