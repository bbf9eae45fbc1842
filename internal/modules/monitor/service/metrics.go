package service

import "github.com/prometheus/client_golang/prometheus"

var runsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "floodwatch_monitor_runs_total",
		Help: "Completed pipeline runs, labeled by final status.",
	},
	[]string{"status"},
)

func init() {
	prometheus.MustRegister(runsTotal)
}
