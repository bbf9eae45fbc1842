package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"floodwatch/internal/errs"
	"floodwatch/internal/floodapi"
	"floodwatch/internal/modules/monitor/repository"
	"floodwatch/internal/modules/monitor/types"
)

// fileStampLayout is the minute-resolution timestamp embedded in generated
// plot and data file names.
const fileStampLayout = "2006-01-02T15:04"

// ReadingsFetcher is the slice of the upstream client the pipeline needs.
type ReadingsFetcher interface {
	FetchStationIDs(ctx context.Context) ([]string, error)
	FetchReadings(ctx context.Context, stationID string, since time.Time) ([]floodapi.RawReading, error)
}

// Renderer draws a dataset either to a PNG file or to a terminal writer.
type Renderer interface {
	RenderFile(ds *types.Dataset, path string) error
	RenderTerminal(ds *types.Dataset, w io.Writer) error
}

// Params is one monitor request.
type Params struct {
	StationID      string
	DaysBack       int
	RefreshIDs     bool
	SaveCSV        bool
	SaveNotDisplay bool
	// Display receives the terminal rendering when SaveNotDisplay is false.
	// Defaults to stdout.
	Display io.Writer
	// AllowMissingList downgrades a missing allow-list file to a logged
	// warning instead of a validation error. The web surface sets it so a
	// fresh deployment can serve requests before any refresh has run.
	AllowMissingList bool
}

// Deps carries the service's collaborators.
type Deps struct {
	Fetcher     ReadingsFetcher
	Allowlist   *repository.Allowlist
	CSVStore    *repository.CSVStore
	Renderer    Renderer
	Journal     repository.Journal
	Logger      *slog.Logger
	Now         func() time.Time
	PlotsDir    string
	MaxDaysBack int
}

// Service runs the fetch, extract, persist, render pipeline for one station
// at a time.
type Service struct {
	fetcher     ReadingsFetcher
	allowlist   *repository.Allowlist
	csvStore    *repository.CSVStore
	renderer    Renderer
	journal     repository.Journal
	logger      *slog.Logger
	now         func() time.Time
	plotsDir    string
	maxDaysBack int
}

func NewService(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		fetcher:     deps.Fetcher,
		allowlist:   deps.Allowlist,
		csvStore:    deps.CSVStore,
		renderer:    deps.Renderer,
		journal:     deps.Journal,
		logger:      deps.Logger,
		now:         deps.Now,
		plotsDir:    deps.PlotsDir,
		maxDaysBack: deps.MaxDaysBack,
	}
}

// Monitor runs the pipeline described by p and returns the run record. The
// record is journaled with status ok or error either way; journal failures
// are logged, not returned, since the run's outputs are already on disk.
func (s *Service) Monitor(ctx context.Context, p Params) (types.Run, error) {
	run := types.Run{
		StationID: p.StationID,
		DaysBack:  p.DaysBack,
		StartedAt: s.now(),
	}

	err := s.monitor(ctx, p, &run)
	run.FinishedAt = s.now()
	if err != nil {
		run.Status = "error"
		run.Error = err.Error()
	} else {
		run.Status = "ok"
	}

	s.record(run)
	runsTotal.WithLabelValues(run.Status).Inc()
	return run, err
}

func (s *Service) monitor(ctx context.Context, p Params, run *types.Run) error {
	const op = "service.Monitor"

	if p.StationID == "" {
		return errs.Newf(errs.Validation, op, "station id is required")
	}
	if p.DaysBack < 1 || p.DaysBack > s.maxDaysBack {
		return errs.Newf(errs.Validation, op, "days back %d not in required range 1-%d", p.DaysBack, s.maxDaysBack)
	}

	if p.RefreshIDs {
		ids, err := s.fetcher.FetchStationIDs(ctx)
		if err != nil {
			return err
		}
		if err := s.allowlist.Save(ids); err != nil {
			return err
		}
		s.logger.Info("station ids refreshed", "count", len(ids), "path", s.allowlist.Path())
	}

	if err := s.validateStation(p); err != nil {
		return err
	}

	since := run.StartedAt.UTC().Add(-time.Duration(p.DaysBack) * 24 * time.Hour)
	readings, err := s.fetcher.FetchReadings(ctx, p.StationID, since)
	if err != nil {
		return err
	}

	ds, err := ExtractDataset(readings)
	if err != nil {
		return err
	}
	run.ReadingCount = ds.TotalReadings()
	run.MeasureCount = ds.Len()
	s.logger.Info("readings extracted",
		"station_id", p.StationID,
		"readings", run.ReadingCount,
		"measures", run.MeasureCount,
	)

	stamp := run.StartedAt.Format(fileStampLayout)

	if p.SaveCSV {
		for _, measure := range ds.Measures() {
			name, err := s.csvStore.SaveSeries(p.StationID, measure, ds.Series(measure), stamp)
			if err != nil {
				return err
			}
			run.DataFiles = append(run.DataFiles, name)
		}
		s.logger.Info("data files written", "count", len(run.DataFiles), "dir", s.csvStore.Dir())
	}

	if p.SaveNotDisplay {
		name := fmt.Sprintf("station_%s_%s.png", p.StationID, stamp)
		if err := s.renderer.RenderFile(ds, filepath.Join(s.plotsDir, name)); err != nil {
			return err
		}
		run.PlotFile = name
		s.logger.Info("plot written", "file", name, "dir", s.plotsDir)
		return nil
	}

	display := p.Display
	if display == nil {
		display = os.Stdout
	}
	return s.renderer.RenderTerminal(ds, display)
}

func (s *Service) validateStation(p Params) error {
	const op = "service.Monitor"

	ok, err := s.allowlist.Has(p.StationID)
	if err != nil {
		if p.AllowMissingList && errs.IsKind(err, errs.Validation) {
			s.logger.Warn("station ids file not found, skipping validation", "path", s.allowlist.Path())
			return nil
		}
		return err
	}
	if !ok {
		return errs.Newf(errs.Validation, op,
			"invalid station id: %s; must be one of the ids listed in %s", p.StationID, s.allowlist.Path())
	}
	return nil
}

func (s *Service) record(run types.Run) {
	if s.journal == nil {
		return
	}
	if err := s.journal.RecordRun(run); err != nil {
		s.logger.Error("record run failed", "station_id", run.StationID, "error", err)
	}
}

// RecentRuns exposes the journal to the web surface. Without a journal it
// returns nothing rather than failing the page.
func (s *Service) RecentRuns(limit int) ([]types.Run, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.RecentRuns(limit)
}
