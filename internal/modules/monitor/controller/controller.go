package controller

import (
	"context"
	"net/http"

	"floodwatch/internal/modules/monitor/service"
	"floodwatch/internal/modules/monitor/types"
)

// MonitorService is the slice of the pipeline the web surface calls.
type MonitorService interface {
	Monitor(ctx context.Context, p service.Params) (types.Run, error)
	RecentRuns(limit int) ([]types.Run, error)
}

type MonitorController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type monitorControllerImpl struct {
	service     MonitorService
	plotsDir    string
	dataDir     string
	maxDaysBack int
}

func NewMonitorController(service MonitorService, plotsDir, dataDir string, maxDaysBack int) MonitorController {
	return &monitorControllerImpl{
		service:     service,
		plotsDir:    plotsDir,
		dataDir:     dataDir,
		maxDaysBack: maxDaysBack,
	}
}

func (c *monitorControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleIndex)
	mux.HandleFunc("GET /monitor", c.handleMonitor)
	mux.HandleFunc("GET /plot/{file}", c.handlePlotFile)
	mux.HandleFunc("GET /data/{file}", c.handleDataFile)
	mux.HandleFunc("GET /api/v1/runs", c.handleRuns)
}
