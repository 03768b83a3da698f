package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var ProcedureCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "taskboard_procedure_calls_total",
		Help: "Task procedure calls by outcome",
	},
	[]string{"procedure", "outcome"},
)

func init() {
	prometheus.MustRegister(ProcedureCalls)
}

func observe(procedure string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(Classify(err))
	}
	ProcedureCalls.WithLabelValues(procedure, outcome).Inc()
}
