package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

const recentRunsLimit = 20

// parseMonitorQuery reads the request form. Only shape is checked here; the
// station allow-list and the days-back range belong to the pipeline.
func parseMonitorQuery(r *http.Request) (stationID string, daysBack int, err error) {
	q := r.URL.Query()

	stationID = strings.TrimSpace(q.Get("station_id"))
	if stationID == "" {
		return "", 0, errors.New("missing 'station_id'")
	}

	daysBack = 1
	if s := q.Get("days_back"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return "", 0, errors.New("invalid 'days_back' (expected integer)")
		}
		daysBack = n
	}

	return stationID, daysBack, nil
}

func parseRunsQuery(r *http.Request) (limit int, err error) {
	limit = recentRunsLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, errors.New("invalid 'limit' (expected integer)")
		}
		if n <= 0 {
			return 0, errors.New("'limit' must be > 0")
		}
		if n > 100 {
			return 0, errors.New("'limit' must be <= 100")
		}
		limit = n
	}
	return limit, nil
}
