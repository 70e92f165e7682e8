// Package history archives every harvest in sqlite, so a bad run can be compared with the
// ones before it.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"storefront-harvester/internal/assert"
	"storefront-harvester/internal/catalog"
	"storefront-harvester/internal/components/telemetry"
	"storefront-harvester/internal/db"
	"storefront-harvester/internal/snapshot"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_db_query       = "db.query"
	report_history_decode = "history.decode"
)

var tracer = otel.Tracer("harvester.history")

// DefaultKeep is how many runs per storefront are kept when no other value is configured.
const DefaultKeep = 200

type Entry struct {
	ID         int64
	Storefront string
	Snapshot   catalog.Snapshot
	// Error is the run's diagnostic error message, empty for a clean run.
	Error string
}

type Store struct {
	qry    *db.Queries
	makeTx db.MakeTx
	keep   int
	tel    telemetry.API
}

// NewStore wraps a database opened with db.Open. keep bounds the runs kept per storefront,
// 0 or less keeps everything.
func NewStore(database *sql.DB, keep int, tel telemetry.API) Store {
	assert.NotNil(database)
	assert.NotNil(tel)

	return Store{
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
		keep:   keep,
		tel:    telemetry.NewScopedAPI("history", tel),
	}
}

func (s Store) Record(ctx context.Context, storefront string, snap catalog.Snapshot, runErr error) error {
	ctx, span := tracer.Start(ctx, "Record")
	defer span.End()
	span.SetAttributes(attribute.String("storefront", storefront))

	payload, err := snapshot.Marshal(snap)
	if err != nil {
		return err
	}
	errMessage := ""
	if runErr != nil {
		errMessage = runErr.Error()
	}

	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer discard()

	param := db.CreateRunParams{
		Storefront: storefront,
		UpdatedAt:  snap.UpdatedAt,
		Active:     snap.Active,
		ItemCount:  int64(len(snap.Items)),
		Error:      errMessage,
		Payload:    string(payload),
	}
	_, err = tx.CreateRun(ctx, param)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "CreateRun", storefront)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if s.keep > 0 {
		pruned, err := tx.PruneRuns(ctx, db.PruneRunsParams{
			Storefront: storefront,
			Keep:       int64(s.keep),
		})
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "PruneRuns", storefront)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if pruned > 0 {
			s.tel.ReportDebug("pruned runs", storefront, pruned)
		}
	}

	return commit()
}

// Recent returns the newest n runs, newest first. An empty storefront lists every storefront.
func (s Store) Recent(ctx context.Context, storefront string, n int) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "Recent")
	defer span.End()

	rows, err := s.qry.ListRuns(ctx, db.ListRunsParams{
		Storefront: storefront,
		Limit:      int64(n),
	})
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListRuns", storefront)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		var snap catalog.Snapshot
		err := json.Unmarshal([]byte(r.Payload), &snap)
		if err != nil {
			s.tel.ReportWarning(report_history_decode, err, r.ID)
			snap = catalog.Snapshot{UpdatedAt: r.UpdatedAt, Active: r.Active}
		}
		entries = append(entries, Entry{
			ID:         r.ID,
			Storefront: r.Storefront,
			Snapshot:   snap,
			Error:      r.Error,
		})
	}
	return entries, nil
}
