package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"

	"floodwatch/internal/modules/monitor/types"
)

var monitorTmpl *template.Template

// loadTemplatesFromFS loads monitor templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	monitorTmpl, err = template.ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded monitor templates. Call during startup
// before serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// IndexData is the view model for the request form page.
type IndexData struct {
	MaxDaysBack int
	Runs        []types.Run
}

func RenderIndex(w io.Writer, data *IndexData) error {
	if monitorTmpl == nil {
		return errors.New("index template not loaded: call views.LoadTemplates during startup")
	}
	return monitorTmpl.ExecuteTemplate(w, "index.html", data)
}

// ResultsData is the view model for a completed run's results page.
type ResultsData struct {
	StationID string
	PlotFile  string
	DataFiles []string
}

func RenderResults(w io.Writer, data *ResultsData) error {
	if monitorTmpl == nil {
		return errors.New("results template not loaded: call views.LoadTemplates during startup")
	}
	return monitorTmpl.ExecuteTemplate(w, "results.html", data)
}

// ErrorData is the view model for the error page.
type ErrorData struct {
	Status  int
	Message string
}

func RenderError(w io.Writer, data *ErrorData) error {
	if monitorTmpl == nil {
		return errors.New("error template not loaded: call views.LoadTemplates during startup")
	}
	return monitorTmpl.ExecuteTemplate(w, "error.html", data)
}
