package main

import (
	"context"
	"fmt"

	"patient-activation/config"
	"patient-activation/database"
	"patient-activation/firebase"
	"patient-activation/storage"
	"patient-activation/utilities"
	"patient-activation/warehouse"
)

// openStore builds the configured backend wrapped with metrics. The returned
// func releases the underlying client.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	var (
		store   storage.Store
		closeFn func() error
	)

	switch cfg.Storage.Backend {
	case config.BackendBigQuery:
		client, err := warehouse.NewClient(ctx, cfg.BigQuery)
		if err != nil {
			return nil, nil, err
		}
		store = warehouse.NewBigQueryStore(client, cfg.BigQuery.ProjectID, cfg.BigQuery.Dataset, cfg.Storage.Table)
		closeFn = client.Close

	case config.BackendFirestore:
		client, err := firebase.NewFirestoreClient(ctx, cfg.Firebase)
		if err != nil {
			return nil, nil, err
		}
		store = firebase.NewFirestoreStore(client, cfg.Storage.Table)
		closeFn = client.Close

	case config.BackendPostgres:
		db, err := database.ConnectPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		store = database.NewSQLStore(db, database.Postgres, cfg.Storage.Table)
		closeFn = db.Close

	case config.BackendSQLite:
		db, err := database.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		store = database.NewSQLStore(db, database.SQLite, cfg.Storage.Table)
		closeFn = db.Close

	case config.BackendMemory:
		utilities.LogWarn("using in-memory storage, objectives are lost on restart")
		store = storage.NewMemoryStore()
		closeFn = func() error { return nil }

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	closer := func() {
		if err := closeFn(); err != nil {
			utilities.LogError(err, "closing "+cfg.Storage.Backend+" client")
		}
	}
	return storage.Instrument(store), closer, nil
}
