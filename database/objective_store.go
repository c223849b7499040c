package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"patient-activation/models"
	"patient-activation/storage"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect struct {
	Name        string
	placeholder func(n int) string
}

var (
	Postgres = Dialect{Name: "postgres", placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
	SQLite   = Dialect{Name: "sqlite", placeholder: func(int) string { return "?" }}
)

const objectiveColumns = "id, title, category, status, priority, target_date"

// SQLStore implements storage.Store on a relational database.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

func NewSQLStore(db *sql.DB, dialect Dialect, table string) *SQLStore {
	if table == "" {
		table = storage.TableName
	}
	return &SQLStore{db: db, dialect: dialect, table: table}
}

func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			category    TEXT NOT NULL,
			status      TEXT NOT NULL,
			priority    TEXT NOT NULL,
			target_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + s.table + `_target_date ON ` + s.table + ` (target_date)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return storage.Unavailable("ensure schema", fmt.Errorf("creating %s: %w", s.table, err))
		}
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) List(ctx context.Context) ([]models.Objective, error) {
	query := `SELECT ` + objectiveColumns + ` FROM ` + s.table + ` ORDER BY target_date ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storage.Unavailable("list", fmt.Errorf("listing objectives: %w", err))
	}
	defer rows.Close()

	objectives := []models.Objective{}
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			return nil, storage.Unavailable("list", err)
		}
		objectives = append(objectives, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Unavailable("list", fmt.Errorf("iterating objectives: %w", err))
	}
	return objectives, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (models.Objective, error) {
	query := `SELECT ` + objectiveColumns + ` FROM ` + s.table + ` WHERE id = ` + s.dialect.placeholder(1) + ` LIMIT 1`
	o, err := scanObjective(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Objective{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Objective{}, storage.Unavailable("get", err)
	}
	return o, nil
}

func (s *SQLStore) Create(ctx context.Context, in models.InsertObjective) (models.Objective, error) {
	o := in.WithID(uuid.NewString())

	p := s.dialect.placeholder
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s, %s, %s, %s, %s, %s)`,
		s.table, objectiveColumns, p(1), p(2), p(3), p(4), p(5), p(6))
	_, err := s.db.ExecContext(ctx, query,
		o.ID,
		o.Title,
		string(o.Category),
		string(o.Status),
		string(o.Priority),
		o.TargetDate,
	)
	if err != nil {
		return models.Objective{}, storage.Unavailable("create", fmt.Errorf("inserting objective: %w", err))
	}
	return o, nil
}

func (s *SQLStore) Update(ctx context.Context, id string, patch models.ObjectivePatch) (models.Objective, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Objective{}, err
	}
	if patch.IsEmpty() {
		return existing, nil
	}

	setClause, params := s.buildSetClause(patch)
	query := "UPDATE " + s.table + " SET " + setClause + " WHERE id = " + s.dialect.placeholder(len(params)+1)
	params = append(params, id)

	res, err := s.db.ExecContext(ctx, query, params...)
	if err != nil {
		return models.Objective{}, storage.Unavailable("update", fmt.Errorf("updating objective: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Deleted between the existence check and the write.
		return models.Objective{}, storage.ErrNotFound
	}
	return patch.Apply(existing), nil
}

// buildSetClause lists only the fields present in patch, numbering placeholders from 1.
func (s *SQLStore) buildSetClause(patch models.ObjectivePatch) (string, []interface{}) {
	var clauses []string
	var params []interface{}
	add := func(column string, value interface{}) {
		params = append(params, value)
		clauses = append(clauses, column+" = "+s.dialect.placeholder(len(params)))
	}

	if patch.Title.Set {
		add("title", patch.Title.Value)
	}
	if patch.Category.Set {
		add("category", string(patch.Category.Value))
	}
	if patch.Status.Set {
		add("status", string(patch.Status.Value))
	}
	if patch.Priority.Set {
		add("priority", string(patch.Priority.Value))
	}
	if patch.TargetDate.Set {
		add("target_date", patch.TargetDate.Value)
	}
	return strings.Join(clauses, ", "), params
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+s.table+" WHERE id = "+s.dialect.placeholder(1), id)
	if err != nil {
		return storage.Unavailable("delete", fmt.Errorf("deleting objective: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storage.Unavailable("delete", fmt.Errorf("reading affected rows: %w", err))
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanObjective(row scanner) (models.Objective, error) {
	var (
		o                          models.Objective
		category, status, priority string
	)
	if err := row.Scan(&o.ID, &o.Title, &category, &status, &priority, &o.TargetDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Objective{}, err
		}
		return models.Objective{}, fmt.Errorf("scanning objective: %w", err)
	}
	o.Category = models.Category(category)
	o.Status = models.Status(status)
	o.Priority = models.Priority(priority)
	return o, nil
}
