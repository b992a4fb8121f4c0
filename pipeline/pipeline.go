// Package pipeline wires fetch, normalize, and materialize into one run.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"yclients_sync/config"
	"yclients_sync/export"
	"yclients_sync/models"
	"yclients_sync/normalize"
	"yclients_sync/storage"
	"yclients_sync/yclients"
)

// Pipeline runs the full extract-transform-load sequence. Resources are
// processed one after another, each independently: a failure in one is
// logged and counted but never aborts the siblings. Everything is
// single-threaded; no page fetch overlaps a table write.
type Pipeline struct {
	cfg      *config.Config
	client   *yclients.Client
	sink     storage.Sink
	pg       *storage.PostgresStore // non-nil when the sink is Postgres; used for run tracking
	exporter *export.Exporter
	uploader *storage.S3Uploader
	mode     storage.WriteMode
}

func New(cfg *config.Config, client *yclients.Client, sink storage.Sink, exporter *export.Exporter) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		client:   client,
		sink:     sink,
		exporter: exporter,
		mode:     storage.WriteMode(cfg.WriteMode),
	}
	if pg, ok := sink.(*storage.PostgresStore); ok {
		p.pg = pg
	}
	return p
}

// SetUploader enables publishing spreadsheet exports to S3 after each run.
func (p *Pipeline) SetUploader(u *storage.S3Uploader) {
	p.uploader = u
}

// RunAll performs one full sync. Per-resource errors are recorded on the run
// and do not abort sibling resources; the run itself only reports an error
// when every resource failed.
func (p *Pipeline) RunAll(ctx context.Context) error {
	run := &models.SyncRun{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if p.pg != nil {
		if err := p.pg.CreateSyncRun(ctx, run); err != nil {
			log.Printf("Warning: failed to create sync run: %v", err)
		}
	}
	log.Printf("Starting sync run %s", run.ID)

	resources := []struct {
		name string
		fn   func(context.Context) (int, error)
	}{
		{models.TableStaff, p.runStaff},
		{models.TableSchedule, p.runSchedule},
		{models.TableServiceCategories, p.runServiceCategories},
		{models.TableServices, p.runServices},
		{models.TableGoods, p.runGoods},
		{models.TableRecords, p.runRecords},
	}

	failed := 0
	for _, r := range resources {
		rows, err := r.fn(ctx)
		if err != nil {
			log.Printf("Resource %s failed: %v", r.name, err)
			run.ErrorsCount++
			run.LastError = fmt.Sprintf("%s: %v", r.name, err)
			failed++
			continue
		}
		run.RowsWritten += rows
	}

	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	if run.ErrorsCount > 0 {
		run.Status = models.RunStatusFailed
	}
	if p.pg != nil {
		if err := p.pg.FinishSyncRun(ctx, run); err != nil {
			log.Printf("Warning: failed to finish sync run: %v", err)
		}
	}

	log.Printf("Sync run %s %s: %d rows written, %d errors", run.ID, run.Status, run.RowsWritten, run.ErrorsCount)

	if failed == len(resources) {
		return fmt.Errorf("all %d resources failed, last error: %s", failed, run.LastError)
	}
	return nil
}

func (p *Pipeline) runStaff(ctx context.Context) (int, error) {
	items, err := p.client.FetchAll(ctx, p.client.Endpoint("staff"), "GET", nil)
	if err != nil {
		return 0, err
	}
	return p.materialize(ctx, models.TableStaff, normalize.Staff(items))
}

func (p *Pipeline) runSchedule(ctx context.Context) (int, error) {
	from := time.Now().AddDate(0, 0, -p.cfg.API.ScheduleDaysBack)
	to := time.Now().AddDate(0, 0, p.cfg.API.ScheduleDaysForward)

	items, err := p.client.FetchAll(ctx, p.client.ScheduleEndpoint(from, to), "GET", nil)
	if err != nil {
		return 0, err
	}
	return p.materialize(ctx, models.TableSchedule, normalize.Schedule(items))
}

func (p *Pipeline) runServiceCategories(ctx context.Context) (int, error) {
	items, err := p.client.FetchAll(ctx, p.client.Endpoint("service_categories"), "GET", nil)
	if err != nil {
		return 0, err
	}
	return p.materialize(ctx, models.TableServiceCategories, normalize.ServiceCategories(items))
}

func (p *Pipeline) runServices(ctx context.Context) (int, error) {
	items, err := p.client.FetchAll(ctx, p.client.Endpoint("services"), "GET", nil)
	if err != nil {
		return 0, err
	}
	return p.materialize(ctx, models.TableServices, normalize.Services(items))
}

func (p *Pipeline) runGoods(ctx context.Context) (int, error) {
	items, err := p.client.FetchAll(ctx, p.client.Endpoint("goods"), "GET", nil)
	if err != nil {
		return 0, err
	}
	return p.materialize(ctx, models.TableGoods, normalize.Goods(items))
}

// runRecords produces two tables from one fetch: the exploded records fact
// table and the deduplicated clients table derived from it.
func (p *Pipeline) runRecords(ctx context.Context) (int, error) {
	items, err := p.client.FetchAll(ctx, p.client.Endpoint("records"), "GET", nil)
	if err != nil {
		return 0, err
	}

	records, clients, err := normalize.Records(items)
	if err != nil {
		return 0, err
	}

	written, err := p.materialize(ctx, models.TableClients, clients)
	if err != nil {
		return 0, err
	}
	n, err := p.materialize(ctx, models.TableRecords, records)
	if err != nil {
		return written, err
	}
	return written + n, nil
}

// materialize writes one table to the configured destinations.
func (p *Pipeline) materialize(ctx context.Context, name string, data *models.Table) (int, error) {
	if p.sink != nil {
		if err := p.sink.Write(ctx, name, data, p.mode); err != nil {
			return 0, err
		}
	}

	if p.exporter != nil && !data.Empty() {
		path, err := p.exporter.WriteTable(name, data)
		if err != nil {
			return 0, fmt.Errorf("export %s: %w", name, err)
		}
		log.Printf("Exported %s (%d rows) to %s", name, data.NumRows(), path)

		if p.uploader != nil {
			if err := p.uploader.UploadExport(ctx, path); err != nil {
				return 0, fmt.Errorf("upload %s: %w", name, err)
			}
		}
	}

	return data.NumRows(), nil
}
