package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	_ "github.com/mattn/go-sqlite3"

	"floodwatch/internal/errs"
	"floodwatch/internal/floodapi"
	"floodwatch/internal/migrate"
	"floodwatch/internal/modules/monitor/repository"
	"floodwatch/internal/modules/monitor/types"
	"floodwatch/internal/plot"
)

var testNow = time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }

func fixtureReadings() []floodapi.RawReading {
	return []floodapi.RawReading{
		{
			Measure:  "http://environment.data.gov.uk/flood-monitoring/id/measures/1029TH-level-stage-i-15_min-mASD",
			DateTime: "2024-03-15T10:00:00Z",
			Value:    fptr(1.234),
		},
		{
			Measure:  "http://environment.data.gov.uk/flood-monitoring/id/measures/1029TH-level-downstage-i-15_min-mASD",
			DateTime: "2024-03-15T10:15:00Z",
			Value:    fptr(0.935),
		},
	}
}

type readingsCall struct {
	stationID string
	since     time.Time
}

type fetcherMock struct {
	ids         []string
	idsErr      error
	readings    []floodapi.RawReading
	readingsErr error

	idsCalls      int
	readingsCalls []readingsCall
}

func (m *fetcherMock) FetchStationIDs(ctx context.Context) ([]string, error) {
	m.idsCalls++
	return m.ids, m.idsErr
}

func (m *fetcherMock) FetchReadings(ctx context.Context, stationID string, since time.Time) ([]floodapi.RawReading, error) {
	m.readingsCalls = append(m.readingsCalls, readingsCall{stationID: stationID, since: since})
	return m.readings, m.readingsErr
}

type journalMock struct {
	recordErr error
	recorded  []types.Run
}

func (m *journalMock) RecordRun(run types.Run) error {
	m.recorded = append(m.recorded, run)
	return m.recordErr
}

func (m *journalMock) RecentRuns(limit int) ([]types.Run, error) {
	return m.recorded, nil
}

type testEnv struct {
	svc       *Service
	fetcher   *fetcherMock
	allowlist *repository.Allowlist
	journal   repository.Journal
	plotsDir  string
	dataDir   string
}

func testSetup(t *testing.T, fetcher *fetcherMock) *testEnv {
	t.Helper()
	root := t.TempDir()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Every connection to :memory: is a distinct database; keep the pool at one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if closeErr := db.Close(); closeErr != nil {
			t.Errorf("close db: %v", closeErr)
		}
	})
	if err := migrate.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{
		fetcher:   fetcher,
		allowlist: repository.NewAllowlist(filepath.Join(root, "data", "station_ids.txt")),
		journal:   repository.NewJournal(db),
		plotsDir:  filepath.Join(root, "plots"),
		dataDir:   filepath.Join(root, "data", "readings"),
	}
	env.svc = NewService(Deps{
		Fetcher:     fetcher,
		Allowlist:   env.allowlist,
		CSVStore:    repository.NewCSVStore(env.dataDir),
		Renderer:    plot.NewRenderer(nil),
		Journal:     env.journal,
		Now:         func() time.Time { return testNow },
		PlotsDir:    env.plotsDir,
		MaxDaysBack: 15,
	})
	return env
}

func TestMonitor_SaveFlow(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, &fetcherMock{readings: fixtureReadings()})
	is.NoErr(env.allowlist.Save([]string{"1029TH", "E2043"}))

	run, err := env.svc.Monitor(context.Background(), Params{
		StationID:      "1029TH",
		DaysBack:       2,
		SaveNotDisplay: true,
		SaveCSV:        true,
	})

	is.NoErr(err)
	is.Equal(run.Status, "ok")
	is.Equal(run.ReadingCount, 2)
	is.Equal(run.MeasureCount, 2)

	is.Equal(run.PlotFile, "station_1029TH_2024-03-16T12:00.png")
	_, statErr := os.Stat(filepath.Join(env.plotsDir, run.PlotFile))
	is.NoErr(statErr)

	is.Equal(len(run.DataFiles), 2)
	for _, name := range run.DataFiles {
		_, statErr := os.Stat(filepath.Join(env.dataDir, name))
		is.NoErr(statErr)
	}

	// The fetch window is now minus two days.
	is.Equal(len(env.fetcher.readingsCalls), 1)
	is.Equal(env.fetcher.readingsCalls[0].stationID, "1029TH")
	is.True(env.fetcher.readingsCalls[0].since.Equal(testNow.Add(-48 * time.Hour)))

	runs, err := env.journal.RecentRuns(10)
	is.NoErr(err)
	is.Equal(len(runs), 1)
	is.Equal(runs[0].Status, "ok")
	is.Equal(runs[0].PlotFile, run.PlotFile)
	is.Equal(len(runs[0].DataFiles), 2)
}

func TestMonitor_DisplayFlow(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, &fetcherMock{readings: fixtureReadings()})
	is.NoErr(env.allowlist.Save([]string{"1029TH"}))

	var buf bytes.Buffer
	run, err := env.svc.Monitor(context.Background(), Params{
		StationID: "1029TH",
		DaysBack:  1,
		Display:   &buf,
	})

	is.NoErr(err)
	is.Equal(run.Status, "ok")
	is.Equal(run.PlotFile, "")
	is.Equal(len(run.DataFiles), 0)
	is.True(strings.Contains(buf.String(), "1029TH-level-stage-i-15_min-mASD"))
	is.True(strings.Contains(buf.String(), "1029TH-level-downstage-i-15_min-mASD"))
}

func TestMonitor_UnknownStation(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, &fetcherMock{})
	is.NoErr(env.allowlist.Save([]string{"1029TH", "E2043", "52119"}))

	_, err := env.svc.Monitor(context.Background(), Params{
		StationID:      "9999ZZ",
		DaysBack:       1,
		SaveNotDisplay: true,
	})

	is.True(err != nil)
	is.True(errs.IsKind(err, errs.Validation))
	is.True(strings.Contains(err.Error(), "9999ZZ"))
	is.Equal(len(env.fetcher.readingsCalls), 0)

	// Failed runs are journaled too.
	runs, jerr := env.journal.RecentRuns(10)
	is.NoErr(jerr)
	is.Equal(len(runs), 1)
	is.Equal(runs[0].Status, "error")
	is.True(strings.Contains(runs[0].Error, "9999ZZ"))
}

func TestMonitor_MissingAllowlist(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, &fetcherMock{})

	_, err := env.svc.Monitor(context.Background(), Params{
		StationID:      "1029TH",
		DaysBack:       1,
		SaveNotDisplay: true,
	})

	is.True(err != nil)
	is.True(errs.IsKind(err, errs.Validation))
	is.True(strings.Contains(err.Error(), "--update-station-ids"))
}

func TestMonitor_MissingAllowlistSkippedWhenAllowed(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, &fetcherMock{readings: fixtureReadings()})

	run, err := env.svc.Monitor(context.Background(), Params{
		StationID:        "1029TH",
		DaysBack:         1,
		SaveNotDisplay:   true,
		AllowMissingList: true,
	})

	is.NoErr(err)
	is.Equal(run.Status, "ok")
}

func TestMonitor_RefreshWritesAllowlist(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, &fetcherMock{
		ids:      []string{"1029TH", "E2043"},
		readings: fixtureReadings(),
	})

	run, err := env.svc.Monitor(context.Background(), Params{
		StationID:      "1029TH",
		DaysBack:       1,
		RefreshIDs:     true,
		SaveNotDisplay: true,
	})

	is.NoErr(err)
	is.Equal(run.Status, "ok")
	is.Equal(env.fetcher.idsCalls, 1)

	ok, herr := env.allowlist.Has("E2043")
	is.NoErr(herr)
	is.True(ok)
}

func TestMonitor_DaysBackOutOfRange(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, &fetcherMock{})
	is.NoErr(env.allowlist.Save([]string{"1029TH"}))

	for _, days := range []int{0, -1, 16} {
		_, err := env.svc.Monitor(context.Background(), Params{
			StationID:      "1029TH",
			DaysBack:       days,
			SaveNotDisplay: true,
		})
		is.True(errs.IsKind(err, errs.Validation))
	}
	is.Equal(len(env.fetcher.readingsCalls), 0)
}

func TestMonitor_EmptyStationID(t *testing.T) {
	is := is.New(t)
	env := testSetup(t, &fetcherMock{})

	_, err := env.svc.Monitor(context.Background(), Params{DaysBack: 1, SaveNotDisplay: true})
	is.True(errs.IsKind(err, errs.Validation))
}

func TestMonitor_FetchErrorJournaled(t *testing.T) {
	is := is.New(t)
	fetchErr := errs.Newf(errs.Network, "floodapi.FetchReadings", "connection refused")
	env := testSetup(t, &fetcherMock{readingsErr: fetchErr})
	is.NoErr(env.allowlist.Save([]string{"1029TH"}))

	_, err := env.svc.Monitor(context.Background(), Params{
		StationID:      "1029TH",
		DaysBack:       1,
		SaveNotDisplay: true,
	})

	is.True(errs.IsKind(err, errs.Network))

	runs, jerr := env.journal.RecentRuns(10)
	is.NoErr(jerr)
	is.Equal(len(runs), 1)
	is.Equal(runs[0].Status, "error")
	is.True(strings.Contains(runs[0].Error, "network"))
}

func TestMonitor_JournalFailureDoesNotAbort(t *testing.T) {
	is := is.New(t)
	root := t.TempDir()

	journal := &journalMock{recordErr: errors.New("disk full")}
	allowlist := repository.NewAllowlist(filepath.Join(root, "station_ids.txt"))
	is.NoErr(allowlist.Save([]string{"1029TH"}))

	svc := NewService(Deps{
		Fetcher:     &fetcherMock{readings: fixtureReadings()},
		Allowlist:   allowlist,
		CSVStore:    repository.NewCSVStore(filepath.Join(root, "readings")),
		Renderer:    plot.NewRenderer(nil),
		Journal:     journal,
		Now:         func() time.Time { return testNow },
		PlotsDir:    filepath.Join(root, "plots"),
		MaxDaysBack: 15,
	})

	run, err := svc.Monitor(context.Background(), Params{
		StationID:      "1029TH",
		DaysBack:       1,
		SaveNotDisplay: true,
	})

	is.NoErr(err)
	is.Equal(run.Status, "ok")
	is.Equal(len(journal.recorded), 1)
}

func TestMonitor_NoJournal(t *testing.T) {
	is := is.New(t)
	root := t.TempDir()

	allowlist := repository.NewAllowlist(filepath.Join(root, "station_ids.txt"))
	is.NoErr(allowlist.Save([]string{"1029TH"}))

	svc := NewService(Deps{
		Fetcher:     &fetcherMock{readings: fixtureReadings()},
		Allowlist:   allowlist,
		CSVStore:    repository.NewCSVStore(filepath.Join(root, "readings")),
		Renderer:    plot.NewRenderer(nil),
		Now:         func() time.Time { return testNow },
		PlotsDir:    filepath.Join(root, "plots"),
		MaxDaysBack: 15,
	})

	run, err := svc.Monitor(context.Background(), Params{
		StationID:      "1029TH",
		DaysBack:       1,
		SaveNotDisplay: true,
	})

	is.NoErr(err)
	is.Equal(run.Status, "ok")

	runs, rerr := svc.RecentRuns(10)
	is.NoErr(rerr)
	is.Equal(len(runs), 0)
}
