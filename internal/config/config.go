package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultRootURL = "https://environment.data.gov.uk/flood-monitoring/id/stations"

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// APIRootURL is the stations endpoint of the upstream monitoring API.
	APIRootURL string
	// APIItemLimit caps the number of readings requested per fetch; the
	// lookback bound is derived from it (see MaxDaysBack).
	APIItemLimit int
	APITimeout   time.Duration

	// StationIDsPath is the newline-delimited station allow-list file.
	// Relative paths are resolved against the process working directory at startup.
	StationIDsPath string
	PlotsDir       string
	DataDir        string

	JournalDSN      string
	JournalPath     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MaxDaysBack is the largest allowed lookback window. Stations report at most
// ~96 readings per measure per day, so the item limit divided by 100 is the
// window the API can fill.
func (c Config) MaxDaysBack() int {
	return c.APIItemLimit / 100
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	rootURL := strings.TrimSpace(os.Getenv("API_ROOT_URL"))
	if rootURL == "" {
		rootURL = defaultRootURL
	}
	rootURL = strings.TrimSuffix(rootURL, "/")

	itemLimitStr := strings.TrimSpace(os.Getenv("API_ITEM_LIMIT"))
	if itemLimitStr == "" {
		itemLimitStr = "10000"
	}
	itemLimit, err := strconv.Atoi(itemLimitStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid API_ITEM_LIMIT %q: %w", itemLimitStr, err)
	}
	if itemLimit < 100 {
		return Config{}, fmt.Errorf("invalid API_ITEM_LIMIT %d (must be >= 100)", itemLimit)
	}

	timeoutStr := strings.TrimSpace(os.Getenv("API_TIMEOUT"))
	if timeoutStr == "" {
		timeoutStr = "30s"
	}
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid API_TIMEOUT %q: %w", timeoutStr, err)
	}
	if timeout <= 0 {
		return Config{}, fmt.Errorf("invalid API_TIMEOUT %q (must be positive)", timeoutStr)
	}

	stationIDsPath, err := pathFromEnv("STATION_IDS_PATH", filepath.Join("data", "station_ids.txt"))
	if err != nil {
		return Config{}, err
	}
	plotsDir, err := pathFromEnv("PLOTS_DIR", "plots")
	if err != nil {
		return Config{}, err
	}
	dataDir, err := pathFromEnv("DATA_DIR", "data")
	if err != nil {
		return Config{}, err
	}

	journalDSN := strings.TrimSpace(os.Getenv("JOURNAL_DSN"))
	journalPath, err := pathFromEnv("JOURNAL_PATH", filepath.Join("data", "journal.db"))
	if err != nil {
		return Config{}, err
	}

	maxOpenConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_OPEN_CONNS"))
	if maxOpenConnsStr == "" {
		maxOpenConnsStr = "1"
	}
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	maxIdleConnsStr := strings.TrimSpace(os.Getenv("DB_MAX_IDLE_CONNS"))
	if maxIdleConnsStr == "" {
		maxIdleConnsStr = "1"
	}
	maxIdleConns, err := strconv.Atoi(maxIdleConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %q: %w", maxIdleConnsStr, err)
	}

	connMaxLifetimeStr := strings.TrimSpace(os.Getenv("DB_CONN_MAX_LIFETIME"))
	if connMaxLifetimeStr == "" {
		connMaxLifetimeStr = "0s"
	}
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        httpAddr,
		APIRootURL:      rootURL,
		APIItemLimit:    itemLimit,
		APITimeout:      timeout,
		StationIDsPath:  stationIDsPath,
		PlotsDir:        plotsDir,
		DataDir:         dataDir,
		JournalDSN:      journalDSN,
		JournalPath:     journalPath,
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
	}, nil
}

func pathFromEnv(key, fallback string) (string, error) {
	p := strings.TrimSpace(os.Getenv(key))
	if p == "" {
		p = fallback
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", key, p, err)
	}
	return abs, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
