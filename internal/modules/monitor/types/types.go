package types

import (
	"strings"
	"time"
)

// Reading is one timestamped measurement. The timestamp stays the raw string
// the API returned; rendering parses it and rejects values it cannot read.
type Reading struct {
	DateTime string  `json:"dateTime"`
	Value    float64 `json:"value"`
}

// Run records one pipeline execution in the journal.
type Run struct {
	ID           int64     `json:"id"`
	StationID    string    `json:"stationId"`
	DaysBack     int       `json:"daysBack"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	PlotFile     string    `json:"plotFile,omitempty"`
	DataFiles    []string  `json:"dataFiles,omitempty"`
	ReadingCount int       `json:"readingCount"`
	MeasureCount int       `json:"measureCount"`
}

// Dataset maps measure names to their readings. Measures keep the order in
// which they first appeared so charts come out in a stable order.
type Dataset struct {
	order  []string
	series map[string][]Reading
}

func NewDataset() *Dataset {
	return &Dataset{series: make(map[string][]Reading)}
}

// Append adds a reading to the named measure's series, registering the
// measure on first use.
func (d *Dataset) Append(measure string, r Reading) {
	if _, ok := d.series[measure]; !ok {
		d.order = append(d.order, measure)
	}
	d.series[measure] = append(d.series[measure], r)
}

// Measures returns the measure names in first-appearance order.
func (d *Dataset) Measures() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Series returns the readings recorded for one measure, in append order.
func (d *Dataset) Series(measure string) []Reading {
	return d.series[measure]
}

// Len returns the number of measures.
func (d *Dataset) Len() int {
	return len(d.order)
}

// TotalReadings returns the reading count summed over all measures.
func (d *Dataset) TotalReadings() int {
	n := 0
	for _, readings := range d.series {
		n += len(readings)
	}
	return n
}

// MeasureName derives a measure's short name from its reference URL by
// taking the final path segment.
func MeasureName(ref string) string {
	segments := strings.Split(ref, "/")
	return segments[len(segments)-1]
}

// Quantity isolates the physical quantity from a measure name by taking its
// final dash-delimited segment, e.g. "stage" from "level-stage".
func Quantity(measure string) string {
	segments := strings.Split(measure, "-")
	return segments[len(segments)-1]
}
