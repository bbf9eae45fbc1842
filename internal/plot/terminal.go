package plot

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"

	"floodwatch/internal/errs"
	"floodwatch/internal/modules/monitor/types"
)

const (
	terminalHeight = 12
	terminalWidth  = 80
)

// RenderTerminal writes a text rendering of each measure's series to w, one
// graph per measure in dataset order. This is the display destination for
// runs that do not save a file.
func (r *Renderer) RenderTerminal(ds *types.Dataset, w io.Writer) error {
	measures := ds.Measures()
	if len(measures) == 0 {
		if _, err := fmt.Fprintln(w, "no readings returned"); err != nil {
			return errs.New(errs.IO, "plot.RenderTerminal", err)
		}
		return nil
	}

	for i, measure := range measures {
		p, err := buildPanel(measure, ds.Series(measure))
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return errs.New(errs.IO, "plot.RenderTerminal", err)
			}
		}
		if err := writeTerminalPanel(w, p); err != nil {
			return errs.New(errs.IO, "plot.RenderTerminal", err)
		}
	}
	return nil
}

func writeTerminalPanel(w io.Writer, p *panelLayout) error {
	values := p.chronologicalValues()
	switch len(values) {
	case 0:
		_, err := fmt.Fprintf(w, "%s: no readings\n", p.measure)
		return err
	case 1:
		_, err := fmt.Fprintf(w, "%s: single reading %s = %g\n",
			p.measure, p.segments[0].times[0].Format("2006-01-02 15:04"), values[0])
		return err
	}

	graph := asciigraph.Plot(values,
		asciigraph.Height(terminalHeight),
		asciigraph.Width(terminalWidth),
		asciigraph.Caption(p.measure),
	)
	_, err := fmt.Fprintln(w, graph)
	return err
}
