package types

import (
	"reflect"
	"testing"
)

func TestDataset_AppendKeepsFirstAppearanceOrder(t *testing.T) {
	ds := NewDataset()
	ds.Append("level-stage", Reading{DateTime: "2024-03-15T10:00:00Z", Value: 1.234})
	ds.Append("level-downstage", Reading{DateTime: "2024-03-15T10:15:00Z", Value: 0.935})
	ds.Append("level-stage", Reading{DateTime: "2024-03-15T10:15:00Z", Value: 1.240})

	gotOrder := ds.Measures()
	wantOrder := []string{"level-stage", "level-downstage"}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("Measures() = %v, want %v", gotOrder, wantOrder)
	}

	if got := len(ds.Series("level-stage")); got != 2 {
		t.Errorf("len(Series(level-stage)) = %d, want 2", got)
	}
	if got := ds.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := ds.TotalReadings(); got != 3 {
		t.Errorf("TotalReadings() = %d, want 3", got)
	}
}

func TestDataset_SeriesKeepsAppendOrder(t *testing.T) {
	ds := NewDataset()
	ds.Append("level-stage", Reading{DateTime: "2024-03-15T10:15:00Z", Value: 2})
	ds.Append("level-stage", Reading{DateTime: "2024-03-15T10:00:00Z", Value: 1})

	series := ds.Series("level-stage")
	if len(series) != 2 {
		t.Fatalf("len(series) = %d, want 2", len(series))
	}
	if series[0].Value != 2 || series[1].Value != 1 {
		t.Errorf("series order changed: got %v", series)
	}
}

func TestMeasureName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{
			ref:  "http://environment.data.gov.uk/flood-monitoring/id/measures/1029TH-level-stage-i-15_min-mASD",
			want: "1029TH-level-stage-i-15_min-mASD",
		},
		{ref: "measures/level-stage", want: "level-stage"},
		{ref: "level-stage", want: "level-stage"},
	}

	for _, tt := range tests {
		if got := MeasureName(tt.ref); got != tt.want {
			t.Errorf("MeasureName(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		measure string
		want    string
	}{
		{measure: "level-stage", want: "stage"},
		{measure: "level-downstage", want: "downstage"},
		{measure: "1029TH-level-stage-i-15_min-mASD", want: "mASD"},
		{measure: "rainfall", want: "rainfall"},
	}

	for _, tt := range tests {
		if got := Quantity(tt.measure); got != tt.want {
			t.Errorf("Quantity(%q) = %q, want %q", tt.measure, got, tt.want)
		}
	}
}
