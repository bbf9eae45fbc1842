package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/gosimple/slug"

	"floodwatch/internal/errs"
	"floodwatch/internal/modules/monitor/types"
)

// CSVStore writes one CSV file per measure into its directory.
type CSVStore struct {
	dir string
}

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

func (s *CSVStore) Dir() string {
	return s.dir
}

// SaveSeries writes a measure's readings sorted ascending by timestamp and
// returns the generated file name. The header carries the raw measure name;
// the file name carries its slug so it stays filesystem- and URL-safe.
func (s *CSVStore) SaveSeries(stationID, measure string, readings []types.Reading, stamp string) (string, error) {
	type row struct {
		t time.Time
		r types.Reading
	}
	rows := make([]row, 0, len(readings))
	for _, r := range readings {
		t, err := time.Parse(time.RFC3339, r.DateTime)
		if err != nil {
			return "", errs.Newf(errs.DataFormat, "csvstore.SaveSeries",
				"measure %s: parse timestamp %q: %v", measure, r.DateTime, err)
		}
		rows = append(rows, row{t: t, r: r})
	}
	// Stable so same-timestamp readings keep their input order.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].t.Before(rows[j].t) })

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errs.New(errs.IO, "csvstore.SaveSeries", err)
	}

	name := fmt.Sprintf("station_%s_%s_%s.csv", stationID, slug.Make(measure), stamp)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", errs.New(errs.IO, "csvstore.SaveSeries", err)
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, []string{"datetime", measure})
	for _, row := range rows {
		records = append(records, []string{row.r.DateTime, strconv.FormatFloat(row.r.Value, 'g', -1, 64)})
	}

	err = csv.NewWriter(f).WriteAll(records)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", errs.New(errs.IO, "csvstore.SaveSeries", err)
	}
	return name, nil
}
