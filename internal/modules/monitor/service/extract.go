package service

import (
	"time"

	"floodwatch/internal/errs"
	"floodwatch/internal/floodapi"
	"floodwatch/internal/modules/monitor/types"
)

// ExtractDataset groups raw readings by derived measure name, keeping input
// order within each series. A record missing any field, or carrying a
// timestamp that does not parse, fails the whole extraction.
func ExtractDataset(raw []floodapi.RawReading) (*types.Dataset, error) {
	const op = "service.ExtractDataset"

	ds := types.NewDataset()
	for i, r := range raw {
		if r.Measure == "" {
			return nil, errs.Newf(errs.DataFormat, op, "record %d: missing measure", i)
		}
		if r.DateTime == "" {
			return nil, errs.Newf(errs.DataFormat, op, "record %d: missing dateTime", i)
		}
		if _, err := time.Parse(time.RFC3339, r.DateTime); err != nil {
			return nil, errs.Newf(errs.DataFormat, op, "record %d: parse timestamp %q: %v", i, r.DateTime, err)
		}
		if r.Value == nil {
			return nil, errs.Newf(errs.DataFormat, op, "record %d: missing value", i)
		}
		ds.Append(types.MeasureName(r.Measure), types.Reading{DateTime: r.DateTime, Value: *r.Value})
	}
	return ds, nil
}
