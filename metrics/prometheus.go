// Package metrics holds the Prometheus registry and the collectors the
// encrypted store reports into.
package metrics

import (
	"regexp"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var schedMetrics = regexp.MustCompile("/sched/.*")

// Prometheus owns a private registry; nothing is registered on the default one.
type Prometheus struct {
	reg *prometheus.Registry
}

func New() *Prometheus {
	return &Prometheus{reg: prometheus.NewRegistry()}
}

// WithGoCollector adds Go runtime metrics including the scheduler histograms.
func (p *Prometheus) WithGoCollector() *Prometheus {
	p.reg.MustRegister(collectors.NewGoCollector(
		collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{Matcher: schedMetrics}),
	))
	return p
}

func (p *Prometheus) WithBuildInfoCollector() *Prometheus {
	p.reg.MustRegister(collectors.NewBuildInfoCollector())
	return p
}

func (p *Prometheus) Registry() *prometheus.Registry { return p.reg }

// WriteTextfile dumps the registry in the node_exporter textfile format.
// The write is atomic.
func (p *Prometheus) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.reg)
}
