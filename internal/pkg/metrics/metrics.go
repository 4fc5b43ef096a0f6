// Package metrics records tracker activity.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Sync outcomes.
const (
	ResultSynced   = "synced"
	ResultNoChange = "no_change"
	ResultError    = "error"
)

// Recorder receives tracker events.
type Recorder interface {
	FieldWritten(table, field string)
	FieldReverted(table, field string)
	SyncFinished(table, result string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) FieldWritten(string, string)  {}
func (Nop) FieldReverted(string, string) {}
func (Nop) SyncFinished(string, string)  {}

// Prometheus exports tracker events as counters.
type Prometheus struct {
	writes  *prometheus.CounterVec
	reverts *prometheus.CounterVec
	syncs   *prometheus.CounterVec
}

// NewPrometheus creates the counters and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syncable",
			Name:      "field_writes_total",
			Help:      "Field writes that changed a tracked value.",
		}, []string{"table", "field"}),
		reverts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syncable",
			Name:      "revert_total",
			Help:      "Fields restored to their baseline value.",
		}, []string{"table", "field"}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "syncable",
			Name:      "sync_total",
			Help:      "Sync attempts by outcome.",
		}, []string{"table", "result"}),
	}
	for _, c := range []prometheus.Collector{p.writes, p.reverts, p.syncs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) FieldWritten(table, field string) {
	p.writes.WithLabelValues(table, field).Inc()
}

func (p *Prometheus) FieldReverted(table, field string) {
	p.reverts.WithLabelValues(table, field).Inc()
}

func (p *Prometheus) SyncFinished(table, result string) {
	p.syncs.WithLabelValues(table, result).Inc()
}
