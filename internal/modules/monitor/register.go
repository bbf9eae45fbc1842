package monitor

import (
	"database/sql"
	"log/slog"
	"net/http"
	"path/filepath"

	"floodwatch/internal/config"
	"floodwatch/internal/floodapi"
	"floodwatch/internal/modules/monitor/controller"
	"floodwatch/internal/modules/monitor/repository"
	"floodwatch/internal/modules/monitor/service"
	"floodwatch/internal/plot"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB, cfg config.Config) {
	readingsDir := filepath.Join(cfg.DataDir, "readings")
	monitorService := service.NewService(service.Deps{
		Fetcher:     floodapi.NewClient(cfg.APIRootURL, cfg.APIItemLimit, cfg.APITimeout, slog.Default()),
		Allowlist:   repository.NewAllowlist(cfg.StationIDsPath),
		CSVStore:    repository.NewCSVStore(readingsDir),
		Renderer:    plot.NewRenderer(slog.Default()),
		Journal:     repository.NewJournal(db),
		Logger:      slog.Default(),
		PlotsDir:    cfg.PlotsDir,
		MaxDaysBack: cfg.MaxDaysBack(),
	})
	monitorController := controller.NewMonitorController(monitorService, cfg.PlotsDir, readingsDir, cfg.MaxDaysBack())
	monitorController.RegisterRoutes(mux)
}
