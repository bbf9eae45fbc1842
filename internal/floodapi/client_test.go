package floodapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matryer/is"

	"floodwatch/internal/errs"
)

const sampleReadingsBody = `{
	"items": [
		{
			"@id": "some/id/1",
			"dateTime": "2024-03-15T10:00:00Z",
			"measure": "http://environment.data.gov.uk/flood-monitoring/id/measures/1029TH-level-stage-i-15_min-mASD",
			"value": 1.234
		},
		{
			"@id": "some/id/2",
			"dateTime": "2024-03-15T10:15:00Z",
			"measure": "http://environment.data.gov.uk/flood-monitoring/id/measures/1029TH-level-downstage-i-15_min-mASD",
			"value": 0.935
		}
	]
}`

func TestFetchStationIDs(t *testing.T) {
	is := is.New(t)

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"items": [{"@id": "stations/1029TH"}, {"@id": "stations/E2043"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 1500, 5*time.Second, nil)
	ids, err := client.FetchStationIDs(context.Background())

	is.NoErr(err)
	is.Equal(gotPath, "/")
	is.Equal(ids, []string{"1029TH", "E2043"})
}

func TestFetchStationIDs_MissingID(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"@id": "stations/1029TH"}, {"notid": "x"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 1500, 5*time.Second, nil)
	_, err := client.FetchStationIDs(context.Background())

	is.True(err != nil)
	is.True(errs.IsKind(err, errs.DataFormat))
}

func TestFetchStationIDs_EmptyIDSegment(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"@id": "stations/"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 1500, 5*time.Second, nil)
	_, err := client.FetchStationIDs(context.Background())

	is.True(err != nil)
	is.True(errs.IsKind(err, errs.DataFormat))
}

func TestFetchReadings(t *testing.T) {
	is := is.New(t)

	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(sampleReadingsBody))
	}))
	defer server.Close()

	since := time.Date(2024, 3, 14, 10, 0, 30, 0, time.UTC)
	client := NewClient(server.URL, 1500, 5*time.Second, nil)
	readings, err := client.FetchReadings(context.Background(), "1029TH", since)

	is.NoErr(err)
	is.Equal(gotPath, "/1029TH/readings")
	is.Equal(gotQuery, "since=2024-03-14T10:00:00Z&_sorted&_limit=1500")

	is.Equal(len(readings), 2)
	is.Equal(readings[0].DateTime, "2024-03-15T10:00:00Z")
	is.Equal(readings[0].Measure, "http://environment.data.gov.uk/flood-monitoring/id/measures/1029TH-level-stage-i-15_min-mASD")
	is.True(readings[0].Value != nil)
	is.Equal(*readings[0].Value, 1.234)
	is.True(readings[1].Value != nil)
	is.Equal(*readings[1].Value, 0.935)
}

func TestFetchReadings_MissingValueDecodesNil(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"dateTime": "2024-03-15T10:00:00Z", "measure": "m/level-stage"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 1500, 5*time.Second, nil)
	readings, err := client.FetchReadings(context.Background(), "1029TH", time.Now())

	is.NoErr(err)
	is.Equal(len(readings), 1)
	is.True(readings[0].Value == nil)
}

func TestFetchReadings_UpstreamStatusError(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 1500, 5*time.Second, nil)
	_, err := client.FetchReadings(context.Background(), "1029TH", time.Now())

	is.True(err != nil)
	is.Equal(errs.KindOf(err), errs.Network)
}

func TestFetchReadings_NonJSONBody(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>down for maintenance</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, 1500, 5*time.Second, nil)
	_, err := client.FetchReadings(context.Background(), "1029TH", time.Now())

	is.True(err != nil)
	is.Equal(errs.KindOf(err), errs.Network)
}

func TestFetchStationIDs_ConnectionRefused(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, 1500, time.Second, nil)
	_, err := client.FetchStationIDs(context.Background())

	is.True(err != nil)
	is.Equal(errs.KindOf(err), errs.Network)
}

func TestSinceParam(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "truncates seconds",
			in:   time.Date(2024, 3, 14, 10, 4, 59, 0, time.UTC),
			want: "2024-03-14T10:04:00Z",
		},
		{
			name: "converts to UTC",
			in:   time.Date(2024, 3, 14, 11, 30, 0, 0, time.FixedZone("CET", 3600)),
			want: "2024-03-14T10:30:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sinceParam(tt.in); got != tt.want {
				t.Errorf("sinceParam(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
