package repository

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"floodwatch/internal/modules/monitor/types"
)

//go:embed sql/insert-run.sql
var insertRunSQL string

//go:embed sql/recent-runs.sql
var recentRunsSQL string

// Journal records completed pipeline runs. Failures here are reported to the
// caller but a run's outputs are already on disk, so callers treat them as
// non-fatal.
type Journal interface {
	RecordRun(run types.Run) error
	RecentRuns(limit int) ([]types.Run, error)
}

type journalImpl struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) Journal {
	return &journalImpl{db: db}
}

func (j *journalImpl) RecordRun(run types.Run) error {
	_, err := j.db.Exec(insertRunSQL,
		run.StationID,
		run.DaysBack,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Status,
		run.Error,
		run.PlotFile,
		strings.Join(run.DataFiles, "\n"),
		run.ReadingCount,
		run.MeasureCount,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (j *journalImpl) RecentRuns(limit int) ([]types.Run, error) {
	rows, err := j.db.Query(recentRunsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close runs rows", "error", err)
		}
	}()

	var out []types.Run
	for rows.Next() {
		var run types.Run
		var startedAt, finishedAt, dataFiles string
		if err := rows.Scan(&run.ID, &run.StationID, &run.DaysBack, &startedAt, &finishedAt,
			&run.Status, &run.Error, &run.PlotFile, &dataFiles, &run.ReadingCount, &run.MeasureCount); err != nil {
			return nil, err
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedAt, err)
		}
		run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at %q: %w", finishedAt, err)
		}
		if dataFiles != "" {
			run.DataFiles = strings.Split(dataFiles, "\n")
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
