package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/plateseq/plateseq/internal/call"
)

// WriteResults batch-inserts the call table and well summaries using the
// Appender API. One run writes each (plate, well) exactly once, so no
// deduplication is needed.
func (s *Store) WriteResults(results []*call.WellResult) error {
	if len(results) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if err := s.writeCalls(conn.Raw, results); err != nil {
		return err
	}
	return s.writeSummaries(conn.Raw, results)
}

type rawFunc func(func(driverConn any) error) error

func appender(raw rawFunc, table string) (*goduckdb.Appender, error) {
	var app *goduckdb.Appender
	if err := raw(func(driverConn any) error {
		var err error
		app, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return nil, fmt.Errorf("create appender for %s: %w", table, err)
	}
	return app, nil
}

func (s *Store) writeCalls(raw rawFunc, results []*call.WellResult) error {
	app, err := appender(raw, "variant_calls")
	if err != nil {
		return err
	}
	defer app.Close()

	for _, res := range results {
		for _, vc := range res.Calls {
			if err := app.AppendRow(
				int32(vc.Well.Plate), vc.Well.Well.String(), int64(vc.Pos),
				string(vc.Ref), vc.Called, vc.Frequency, int64(vc.Depth),
				vc.Status.String(),
			); err != nil {
				return fmt.Errorf("append variant call: %w", err)
			}
		}
	}
	return app.Flush()
}

func (s *Store) writeSummaries(raw rawFunc, results []*call.WellResult) error {
	app, err := appender(raw, "well_summaries")
	if err != nil {
		return err
	}
	defer app.Close()

	for _, res := range results {
		if err := app.AppendRow(
			int32(res.Well.Plate), res.Well.Well.String(),
			res.Variant, res.AAVariant, res.MeanFreq, int64(res.ReadCount),
			res.Failed, res.FailErr,
		); err != nil {
			return fmt.Errorf("append well summary: %w", err)
		}
	}
	return app.Flush()
}

// CountCalls returns the number of stored variant call rows.
func (s *Store) CountCalls() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM variant_calls`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count variant calls: %w", err)
	}
	return n, nil
}
