package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"floodwatch/internal/config"
	"floodwatch/internal/db"
	"floodwatch/internal/floodapi"
	"floodwatch/internal/logging"
	"floodwatch/internal/migrate"
	"floodwatch/internal/modules/monitor/repository"
	"floodwatch/internal/modules/monitor/service"
	"floodwatch/internal/plot"
)

const appName = "floodwatch"

// Version is "dev" unless set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newMonitorCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		}
		os.Exit(1)
	}
}

func newMonitorCmd() *cobra.Command {
	var (
		stationID      string
		daysBack       int
		refreshIDs     bool
		saveNotDisplay bool
		saveCSV        bool
	)

	cmd := cobra.Command{
		Use:           appName,
		Short:         "Fetch and plot flood monitoring data for a given station",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			slog.SetDefault(logging.New(cfg, version, appName))

			return runMonitor(cmd.Context(), cfg, service.Params{
				StationID:      stationID,
				DaysBack:       daysBack,
				RefreshIDs:     refreshIDs,
				SaveCSV:        saveCSV,
				SaveNotDisplay: saveNotDisplay,
			})
		},
	}

	cmd.Flags().StringVarP(&stationID, "station-id", "s", "", "ID of the monitoring station")
	cmd.Flags().IntVarP(&daysBack, "days-back", "d", 1, "number of days to look back")
	cmd.Flags().BoolVarP(&refreshIDs, "update-station-ids", "u", false, "update the station IDs file before processing")
	cmd.Flags().BoolVar(&saveNotDisplay, "save-not-display", false, "save the plot to a file instead of displaying it")
	cmd.Flags().BoolVar(&saveCSV, "save-csv", false, "save the data to CSV files")

	if err := cmd.MarkFlagRequired("station-id"); err != nil {
		panic(err)
	}

	return &cmd
}

func runMonitor(ctx context.Context, cfg config.Config, p service.Params) error {
	journal, closeJournal := openJournal(cfg)
	defer closeJournal()

	svc := service.NewService(service.Deps{
		Fetcher:     floodapi.NewClient(cfg.APIRootURL, cfg.APIItemLimit, cfg.APITimeout, slog.Default()),
		Allowlist:   repository.NewAllowlist(cfg.StationIDsPath),
		CSVStore:    repository.NewCSVStore(filepath.Join(cfg.DataDir, "readings")),
		Renderer:    plot.NewRenderer(slog.Default()),
		Journal:     journal,
		Logger:      slog.Default(),
		PlotsDir:    cfg.PlotsDir,
		MaxDaysBack: cfg.MaxDaysBack(),
	})

	_, err := svc.Monitor(ctx, p)
	return err
}

// openJournal opens the run journal best-effort. A run is still useful when
// it cannot be recorded.
func openJournal(cfg config.Config) (repository.Journal, func()) {
	dbConn, err := db.Open(cfg)
	if err != nil {
		slog.Warn("journal unavailable, runs will not be recorded", "error", err)
		return nil, func() {}
	}
	if err := migrate.Run(dbConn); err != nil {
		slog.Warn("journal migration failed, runs will not be recorded", "error", err)
		_ = db.Close(dbConn)
		return nil, func() {}
	}
	return repository.NewJournal(dbConn), func() {
		if err := db.Close(dbConn); err != nil {
			slog.Error("db close", "error", err)
		}
	}
}
