package controller

import (
	"bytes"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"floodwatch/internal/modules/monitor/service"
	"floodwatch/internal/modules/monitor/views"
	"floodwatch/internal/utils"
)

func (c *monitorControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	runs, err := c.service.RecentRuns(recentRunsLimit)
	if err != nil {
		// The request form does not need the journal; render without the table.
		slog.Error("index: recent runs failed", "error", err)
		runs = nil
	}
	data := views.IndexData{MaxDaysBack: c.maxDaysBack, Runs: runs}
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, &data); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("index: write response failed", "error", err)
	}
}

func (c *monitorControllerImpl) handleMonitor(w http.ResponseWriter, r *http.Request) {
	stationID, daysBack, err := parseMonitorQuery(r)
	if err != nil {
		c.renderError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := c.service.Monitor(r.Context(), service.Params{
		StationID:        stationID,
		DaysBack:         daysBack,
		SaveCSV:          true,
		SaveNotDisplay:   true,
		AllowMissingList: true,
	})
	if err != nil {
		status := utils.StatusForError(err)
		if status >= http.StatusInternalServerError {
			slog.Error("monitor: run failed", "station_id", stationID, "error", err)
		} else {
			slog.Warn("monitor: request rejected", "station_id", stationID, "error", err)
		}
		c.renderError(w, status, err.Error())
		return
	}

	data := views.ResultsData{
		StationID: run.StationID,
		PlotFile:  run.PlotFile,
		DataFiles: run.DataFiles,
	}
	var buf bytes.Buffer
	if err := views.RenderResults(&buf, &data); err != nil {
		slog.Error("results template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("monitor: write response failed", "error", err)
	}
}

func (c *monitorControllerImpl) handlePlotFile(w http.ResponseWriter, r *http.Request) {
	c.serveGenerated(w, r, c.plotsDir)
}

func (c *monitorControllerImpl) handleDataFile(w http.ResponseWriter, r *http.Request) {
	c.serveGenerated(w, r, c.dataDir)
}

// serveGenerated serves one generated file out of dir. The requested name is
// reduced to its base so a request cannot reach outside the directory.
func (c *monitorControllerImpl) serveGenerated(w http.ResponseWriter, r *http.Request, dir string) {
	name := filepath.Base(r.PathValue("file"))
	if name == "." || name == string(filepath.Separator) {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (c *monitorControllerImpl) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit, err := parseRunsQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	runs, err := c.service.RecentRuns(limit)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, runs)
}

func (c *monitorControllerImpl) renderError(w http.ResponseWriter, status int, msg string) {
	var buf bytes.Buffer
	if err := views.RenderError(&buf, &views.ErrorData{Status: status, Message: msg}); err != nil {
		slog.Error("error template render failed", "error", err)
		utils.WriteError(w, status, msg)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("error page: write response failed", "error", err)
	}
}
