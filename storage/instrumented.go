package storage

import (
	"context"
	"errors"
	"time"

	"patient-activation/models"
	"patient-activation/utilities"
)

type instrumentedStore struct {
	next Store
}

// Instrument wraps next so every operation records its duration and outcome.
// Ping and EnsureSchema are forwarded when next supports them.
func Instrument(next Store) Store {
	return &instrumentedStore{next: next}
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
		utilities.LogError(err, "objective store "+op+" failed")
	}
	utilities.RecordStoreOperation(op, outcome, time.Since(start))
}

func (s *instrumentedStore) List(ctx context.Context) (objectives []models.Objective, err error) {
	defer func(start time.Time) { s.observe("list", start, err) }(time.Now())
	return s.next.List(ctx)
}

func (s *instrumentedStore) Get(ctx context.Context, id string) (o models.Objective, err error) {
	defer func(start time.Time) { s.observe("get", start, err) }(time.Now())
	return s.next.Get(ctx, id)
}

func (s *instrumentedStore) Create(ctx context.Context, in models.InsertObjective) (o models.Objective, err error) {
	defer func(start time.Time) { s.observe("create", start, err) }(time.Now())
	o, err = s.next.Create(ctx, in)
	if err == nil {
		utilities.LogDebug("created objective %s", o.ID)
	}
	return o, err
}

func (s *instrumentedStore) Update(ctx context.Context, id string, patch models.ObjectivePatch) (o models.Objective, err error) {
	defer func(start time.Time) { s.observe("update", start, err) }(time.Now())
	return s.next.Update(ctx, id, patch)
}

func (s *instrumentedStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, id)
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *instrumentedStore) EnsureSchema(ctx context.Context) error {
	if e, ok := s.next.(SchemaEnsurer); ok {
		return e.EnsureSchema(ctx)
	}
	return nil
}
