// Package warehouse stores objectives in a BigQuery table.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"patient-activation/config"
	"patient-activation/utilities"
)

// NewClient builds a BigQuery client for cfg.ProjectID. The inline service
// account key wins over the credentials file.
func NewClient(ctx context.Context, cfg config.BigQueryConfig) (*bigquery.Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.ServiceAccountKey != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.ServiceAccountKey)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	return client, nil
}

// objectiveRow is the table row; column names match the existing table.
type objectiveRow struct {
	ID         string `bigquery:"id"`
	Title      string `bigquery:"title"`
	Category   string `bigquery:"category"`
	Status     string `bigquery:"status"`
	Priority   string `bigquery:"priority"`
	TargetDate string `bigquery:"targetDate"`
}

var objectiveSchema = bigquery.Schema{
	{Name: "id", Type: bigquery.StringFieldType, Required: true},
	{Name: "title", Type: bigquery.StringFieldType, Required: true},
	{Name: "category", Type: bigquery.StringFieldType, Required: true},
	{Name: "status", Type: bigquery.StringFieldType, Required: true},
	{Name: "priority", Type: bigquery.StringFieldType, Required: true},
	{Name: "targetDate", Type: bigquery.StringFieldType, Required: true},
}

// queryRunner is the slice of the BigQuery API the store needs.
type queryRunner interface {
	read(ctx context.Context, sql string, params []bigquery.QueryParameter) ([]objectiveRow, error)
	exec(ctx context.Context, sql string, params []bigquery.QueryParameter) error
	ping(ctx context.Context) error
	ensureTable(ctx context.Context, dataset, table string) (created bool, err error)
}

type clientRunner struct {
	client *bigquery.Client
}

func (r clientRunner) read(ctx context.Context, sql string, params []bigquery.QueryParameter) ([]objectiveRow, error) {
	q := r.client.Query(sql)
	q.Parameters = params
	it, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}

	var rows []objectiveRow
	for {
		var row objectiveRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r clientRunner) exec(ctx context.Context, sql string, params []bigquery.QueryParameter) error {
	q := r.client.Query(sql)
	q.Parameters = params
	job, err := q.Run(ctx)
	if err != nil {
		return err
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job %s: %w", job.ID(), err)
	}
	return status.Err()
}

func (r clientRunner) ping(ctx context.Context) error {
	q := r.client.Query("SELECT 1")
	_, err := q.Read(ctx)
	return err
}

func (r clientRunner) ensureTable(ctx context.Context, dataset, table string) (bool, error) {
	t := r.client.Dataset(dataset).Table(table)
	_, err := t.Metadata(ctx)
	if err == nil {
		return false, nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusNotFound {
		return false, fmt.Errorf("reading table metadata: %w", err)
	}

	if err := t.Create(ctx, &bigquery.TableMetadata{Schema: objectiveSchema}); err != nil {
		return false, fmt.Errorf("creating table: %w", err)
	}
	return true, nil
}

func logEnsureResult(dataset, table string, created bool) {
	if created {
		utilities.LogInfo("created table %s.%s", dataset, table)
	} else {
		utilities.LogInfo("table %s.%s already exists", dataset, table)
	}
}
