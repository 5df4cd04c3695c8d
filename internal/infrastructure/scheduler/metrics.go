package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var jobRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "retention_job_runs_total",
		Help: "The total number of retention job runs by job and outcome",
	},
	[]string{"job", "outcome"},
)

func init() {
	prometheus.MustRegister(jobRuns)
}
