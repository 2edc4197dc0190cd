package engine

import (
	"github.com/oneconcern/depot/pkg/snapshot"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultCommitted  = "committed"
	resultRolledBack = "rolled_back"
)

// counters only move once the publish transaction is settled
var (
	publishes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "depot",
		Name:      "publishes_total",
		Help:      "Number of publish transactions, by result.",
	}, []string{"result"})

	snapshotsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "depot",
		Subsystem: "snapshot",
		Name:      "buckets_created_total",
		Help:      "Number of committed snapshot buckets.",
	})

	objectsCopied = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "depot",
		Subsystem: "snapshot",
		Name:      "objects_copied_total",
		Help:      "Number of objects copied into committed snapshot buckets.",
	})

	integrityFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "depot",
		Subsystem: "snapshot",
		Name:      "integrity_failures_total",
		Help:      "Number of publishes refused because of a master tag not resolving in its bucket.",
	})
)

func init() {
	prometheus.MustRegister(publishes, snapshotsCreated, objectsCopied, integrityFailures)
}

// publishStats accumulates what a publish transaction created, recorded on commit
type publishStats struct {
	snapshots int
	objects   int
}

func (p *publishStats) add(snap snapshot.Result) {
	if snap.Empty() {
		return
	}
	p.snapshots++
	p.objects += snap.Objects
}

func (p *publishStats) committed() {
	publishes.WithLabelValues(resultCommitted).Inc()
	snapshotsCreated.Add(float64(p.snapshots))
	objectsCopied.Add(float64(p.objects))
}
