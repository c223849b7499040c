package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"patient-activation/models"
)

type memoryRecord struct {
	objective models.Objective
	seq       uint64
}

// MemoryStore keeps objectives in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	seq     uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord)}
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Objective, error) {
	s.mu.RLock()
	records := make([]memoryRecord, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].objective.TargetDate != records[j].objective.TargetDate {
			return records[i].objective.TargetDate < records[j].objective.TargetDate
		}
		return records[i].seq < records[j].seq
	})

	objectives := make([]models.Objective, 0, len(records))
	for _, r := range records {
		objectives = append(objectives, r.objective)
	}
	return objectives, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.Objective, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return models.Objective{}, ErrNotFound
	}
	return r.objective, nil
}

func (s *MemoryStore) Create(ctx context.Context, in models.InsertObjective) (models.Objective, error) {
	o := in.WithID(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.records[o.ID] = memoryRecord{objective: o, seq: s.seq}
	return o, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, patch models.ObjectivePatch) (models.Objective, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return models.Objective{}, ErrNotFound
	}
	if patch.IsEmpty() {
		return r.objective, nil
	}
	r.objective = patch.Apply(r.objective)
	s.records[id] = r
	return r.objective, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
