package plot

import (
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"floodwatch/internal/errs"
	"floodwatch/internal/modules/monitor/types"
)

// Renderer draws one panel per measure and composes them into a single
// figure, either as a PNG on disk or as text for a terminal.
type Renderer struct {
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// RenderFile stacks the dataset's panels vertically, fixed width with
// height growing per measure, and writes the composed figure as a PNG at
// path. Missing parent directories are created. The output file is closed
// on every path out of this function.
func (r *Renderer) RenderFile(ds *types.Dataset, path string) error {
	imgs, err := r.panelImages(ds)
	if err != nil {
		return err
	}

	dc := gg.NewContext(panelWidth, panelHeight*len(imgs))
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	for i, img := range imgs {
		dc.DrawImage(img, 0, i*panelHeight)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.New(errs.IO, "plot.RenderFile", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.New(errs.IO, "plot.RenderFile", err)
	}
	if err := dc.EncodePNG(f); err != nil {
		f.Close()
		return errs.New(errs.IO, "plot.RenderFile", err)
	}
	if err := f.Close(); err != nil {
		return errs.New(errs.IO, "plot.RenderFile", err)
	}

	r.logger.Debug("figure written", "path", path, "panels", len(imgs))
	return nil
}

func (r *Renderer) panelImages(ds *types.Dataset) ([]image.Image, error) {
	measures := ds.Measures()
	if len(measures) == 0 {
		return []image.Image{noDataPanel()}, nil
	}

	imgs := make([]image.Image, 0, len(measures))
	for _, measure := range measures {
		p, err := buildPanel(measure, ds.Series(measure))
		if err != nil {
			return nil, err
		}
		img, err := renderPanel(p)
		if err != nil {
			return nil, err
		}
		imgs = append(imgs, img)
	}
	return imgs, nil
}

// noDataPanel fills the single panel slot when a dataset has no measures at
// all.
func noDataPanel() image.Image {
	dc := gg.NewContext(panelWidth, panelHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0.3, 0.3, 0.3)
	dc.DrawStringAnchored("no readings returned", panelWidth/2, panelHeight/2, 0.5, 0.5)
	return dc.Image()
}
