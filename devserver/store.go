package devserver

import (
	"sync"

	"rabfront/services"
)

// Store holds the stub's estimation documents in memory, in insertion order.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]services.EstimationDocument
	order []string
}

func NewStore(docs ...services.EstimationDocument) *Store {
	s := &Store{docs: make(map[string]services.EstimationDocument)}
	for _, d := range docs {
		s.Put(d)
	}
	return s
}

// Put inserts or replaces a document.
func (s *Store) Put(doc services.EstimationDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[doc.ID]; !ok {
		s.order = append(s.order, doc.ID)
	}
	s.docs[doc.ID] = doc
}

func (s *Store) Get(id string) (services.EstimationDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

func (s *Store) List() []services.EstimationDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]services.EstimationDocument, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id])
	}
	return out
}
