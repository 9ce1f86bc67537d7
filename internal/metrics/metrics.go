// Package metrics exposes data pool activity as Prometheus metrics.
package metrics

import (
	"sync/atomic"

	"github.com/anpopa/tkmviewer-sub000/internal/action"
	"github.com/anpopa/tkmviewer-sub000/internal/model"
	"github.com/anpopa/tkmviewer-sub000/internal/task"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	numKinds    = int(action.KindTerminate) + 1
	numStatuses = int(action.StatusComplete) + 1
	numVariants = int(model.VariantDiskStat) + 1
)

// Collector implements prometheus.Collector with lock-free counters. All
// record methods are safe on a nil *Collector.
type Collector struct {
	actions     [numKinds][numStatuses]atomic.Uint64
	tasks       [2]atomic.Uint64
	entries     [numVariants]atomic.Int64
	enrichFails atomic.Uint64
	queueDepth  atomic.Int64

	actionsDesc     *prometheus.Desc
	tasksDesc       *prometheus.Desc
	entriesDesc     *prometheus.Desc
	enrichFailsDesc *prometheus.Desc
	queueDepthDesc  *prometheus.Desc
}

// New returns a collector with every series at zero.
func New() *Collector {
	return &Collector{
		actionsDesc: prometheus.NewDesc(
			"tkm_actions_total",
			"Actions reported, by kind and final status.",
			[]string{"kind", "status"}, nil),
		tasksDesc: prometheus.NewDesc(
			"tkm_tasks_total",
			"Task pool executions, by outcome.",
			[]string{"status"}, nil),
		entriesDesc: prometheus.NewDesc(
			"tkm_entries_loaded",
			"Entries held after the last load, by variant.",
			[]string{"variant"}, nil),
		enrichFailsDesc: prometheus.NewDesc(
			"tkm_session_enrichment_failures_total",
			"Session time bound or device lookups that failed.",
			nil, nil),
		queueDepthDesc: prometheus.NewDesc(
			"tkm_queue_depth",
			"Actions waiting in the data pool queue.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.actionsDesc
	ch <- c.tasksDesc
	ch <- c.entriesDesc
	ch <- c.enrichFailsDesc
	ch <- c.queueDepthDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for k := 0; k < numKinds; k++ {
		for s := 0; s < numStatuses; s++ {
			ch <- prometheus.MustNewConstMetric(c.actionsDesc, prometheus.CounterValue,
				float64(c.actions[k][s].Load()),
				action.Kind(k).String(), action.Status(s).String())
		}
	}
	for _, st := range []task.Status{task.StatusComplete, task.StatusFailed} {
		ch <- prometheus.MustNewConstMetric(c.tasksDesc, prometheus.CounterValue,
			float64(c.tasks[st].Load()), st.String())
	}
	for _, v := range model.Variants {
		ch <- prometheus.MustNewConstMetric(c.entriesDesc, prometheus.GaugeValue,
			float64(c.entries[v].Load()), v.String())
	}
	ch <- prometheus.MustNewConstMetric(c.enrichFailsDesc, prometheus.CounterValue,
		float64(c.enrichFails.Load()))
	ch <- prometheus.MustNewConstMetric(c.queueDepthDesc, prometheus.GaugeValue,
		float64(c.queueDepth.Load()))
}

// ActionDone counts one action outcome.
func (c *Collector) ActionDone(kind action.Kind, status action.Status) {
	if c == nil || int(kind) < 0 || int(kind) >= numKinds || int(status) < 0 || int(status) >= numStatuses {
		return
	}
	c.actions[kind][status].Add(1)
}

// TaskDone counts one task outcome. Its signature fits task.WithObserver.
func (c *Collector) TaskDone(status task.Status) {
	if c == nil || int(status) < 0 || int(status) >= len(c.tasks) {
		return
	}
	c.tasks[status].Add(1)
}

// SetEntries records the size of the collection installed for v.
func (c *Collector) SetEntries(v model.Variant, n int) {
	if c == nil || int(v) < 0 || int(v) >= len(c.entries) {
		return
	}
	c.entries[v].Store(int64(n))
}

// EnrichmentFailed counts n failed session enrichment lookups.
func (c *Collector) EnrichmentFailed(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.enrichFails.Add(uint64(n))
}

// SetQueueDepth records the number of queued actions.
func (c *Collector) SetQueueDepth(n int) {
	if c == nil {
		return
	}
	c.queueDepth.Store(int64(n))
}
