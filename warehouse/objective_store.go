package warehouse

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"

	"patient-activation/models"
	"patient-activation/storage"
)

const selectColumns = "SELECT id, title, category, status, priority, targetDate FROM "

// BigQueryStore implements storage.Store on a BigQuery table. BigQuery has no
// cheap point mutation, so update and delete check existence before the DML.
type BigQueryStore struct {
	runner    queryRunner
	projectID string
	dataset   string
	table     string
}

func NewBigQueryStore(client *bigquery.Client, projectID, dataset, table string) *BigQueryStore {
	return newStore(clientRunner{client: client}, projectID, dataset, table)
}

func newStore(runner queryRunner, projectID, dataset, table string) *BigQueryStore {
	if table == "" {
		table = storage.TableName
	}
	return &BigQueryStore{runner: runner, projectID: projectID, dataset: dataset, table: table}
}

func (s *BigQueryStore) fullTable() string {
	return fmt.Sprintf("`%s.%s.%s`", s.projectID, s.dataset, s.table)
}

func (s *BigQueryStore) EnsureSchema(ctx context.Context) error {
	created, err := s.runner.ensureTable(ctx, s.dataset, s.table)
	if err != nil {
		return storage.Unavailable("ensure schema", err)
	}
	logEnsureResult(s.dataset, s.table, created)
	return nil
}

func (s *BigQueryStore) Ping(ctx context.Context) error {
	return s.runner.ping(ctx)
}

func (s *BigQueryStore) List(ctx context.Context) ([]models.Objective, error) {
	rows, err := s.runner.read(ctx, s.listSQL(), nil)
	if err != nil {
		return nil, storage.Unavailable("list", fmt.Errorf("listing objectives: %w", err))
	}
	objectives := make([]models.Objective, 0, len(rows))
	for _, row := range rows {
		objectives = append(objectives, row.objective())
	}
	return objectives, nil
}

func (s *BigQueryStore) Get(ctx context.Context, id string) (models.Objective, error) {
	rows, err := s.runner.read(ctx, s.getSQL(), []bigquery.QueryParameter{{Name: "id", Value: id}})
	if err != nil {
		return models.Objective{}, storage.Unavailable("get", fmt.Errorf("fetching objective: %w", err))
	}
	if len(rows) == 0 {
		return models.Objective{}, storage.ErrNotFound
	}
	return rows[0].objective(), nil
}

func (s *BigQueryStore) Create(ctx context.Context, in models.InsertObjective) (models.Objective, error) {
	o := in.WithID(uuid.NewString())

	params := []bigquery.QueryParameter{
		{Name: "id", Value: o.ID},
		{Name: "title", Value: o.Title},
		{Name: "category", Value: string(o.Category)},
		{Name: "status", Value: string(o.Status)},
		{Name: "priority", Value: string(o.Priority)},
		{Name: "targetDate", Value: o.TargetDate},
	}
	if err := s.runner.exec(ctx, s.insertSQL(), params); err != nil {
		return models.Objective{}, storage.Unavailable("create", fmt.Errorf("inserting objective: %w", err))
	}
	return o, nil
}

func (s *BigQueryStore) Update(ctx context.Context, id string, patch models.ObjectivePatch) (models.Objective, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return models.Objective{}, err
	}
	if patch.IsEmpty() {
		return existing, nil
	}

	query, params := s.updateSQL(id, patch)
	if err := s.runner.exec(ctx, query, params); err != nil {
		return models.Objective{}, storage.Unavailable("update", fmt.Errorf("updating objective: %w", err))
	}
	return s.Get(ctx, id)
}

func (s *BigQueryStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	params := []bigquery.QueryParameter{{Name: "id", Value: id}}
	if err := s.runner.exec(ctx, s.deleteSQL(), params); err != nil {
		return storage.Unavailable("delete", fmt.Errorf("deleting objective: %w", err))
	}
	return nil
}

func (s *BigQueryStore) listSQL() string {
	return selectColumns + s.fullTable() + " ORDER BY targetDate ASC"
}

func (s *BigQueryStore) getSQL() string {
	return selectColumns + s.fullTable() + " WHERE id = @id LIMIT 1"
}

func (s *BigQueryStore) insertSQL() string {
	return "INSERT INTO " + s.fullTable() +
		" (id, title, category, status, priority, targetDate)" +
		" VALUES (@id, @title, @category, @status, @priority, @targetDate)"
}

func (s *BigQueryStore) deleteSQL() string {
	return "DELETE FROM " + s.fullTable() + " WHERE id = @id"
}

// updateSQL sets only the fields present in patch.
func (s *BigQueryStore) updateSQL(id string, patch models.ObjectivePatch) (string, []bigquery.QueryParameter) {
	var clauses []string
	params := []bigquery.QueryParameter{{Name: "id", Value: id}}
	add := func(column string, value string) {
		clauses = append(clauses, column+" = @"+column)
		params = append(params, bigquery.QueryParameter{Name: column, Value: value})
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
		add("targetDate", patch.TargetDate.Value)
	}

	return "UPDATE " + s.fullTable() + " SET " + strings.Join(clauses, ", ") + " WHERE id = @id", params
}

func (r objectiveRow) objective() models.Objective {
	return models.Objective{
		ID:         r.ID,
		Title:      r.Title,
		Category:   models.Category(r.Category),
		Status:     models.Status(r.Status),
		Priority:   models.Priority(r.Priority),
		TargetDate: r.TargetDate,
	}
}
