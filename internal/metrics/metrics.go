package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

// Collector counts service events. All methods are safe on a nil receiver so
// components can run without metrics wired.
type Collector struct {
	requests         uint64
	errors           uint64
	transitions      uint64
	conflicts        uint64
	signalsPublished uint64
	signalsDeduped   uint64
	signalErrors     uint64
	signalsDelivered uint64
	signalsDropped   uint64
	sessions         int64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncRequests() {
	if c != nil {
		atomic.AddUint64(&c.requests, 1)
	}
}

func (c *Collector) IncErrors() {
	if c != nil {
		atomic.AddUint64(&c.errors, 1)
	}
}

func (c *Collector) IncTransitions() {
	if c != nil {
		atomic.AddUint64(&c.transitions, 1)
	}
}

func (c *Collector) IncConflicts() {
	if c != nil {
		atomic.AddUint64(&c.conflicts, 1)
	}
}

func (c *Collector) IncSignalsPublished() {
	if c != nil {
		atomic.AddUint64(&c.signalsPublished, 1)
	}
}

func (c *Collector) IncSignalsDeduped() {
	if c != nil {
		atomic.AddUint64(&c.signalsDeduped, 1)
	}
}

func (c *Collector) IncSignalErrors() {
	if c != nil {
		atomic.AddUint64(&c.signalErrors, 1)
	}
}

func (c *Collector) IncSignalsDelivered() {
	if c != nil {
		atomic.AddUint64(&c.signalsDelivered, 1)
	}
}

func (c *Collector) IncSignalsDropped() {
	if c != nil {
		atomic.AddUint64(&c.signalsDropped, 1)
	}
}

func (c *Collector) SessionOpened() {
	if c != nil {
		atomic.AddInt64(&c.sessions, 1)
	}
}

func (c *Collector) SessionClosed() {
	if c != nil {
		atomic.AddInt64(&c.sessions, -1)
	}
}

type Snapshot struct {
	Requests         uint64
	Errors           uint64
	Transitions      uint64
	Conflicts        uint64
	SignalsPublished uint64
	SignalsDeduped   uint64
	SignalErrors     uint64
	SignalsDelivered uint64
	SignalsDropped   uint64
	Sessions         int64
}

func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Requests:         atomic.LoadUint64(&c.requests),
		Errors:           atomic.LoadUint64(&c.errors),
		Transitions:      atomic.LoadUint64(&c.transitions),
		Conflicts:        atomic.LoadUint64(&c.conflicts),
		SignalsPublished: atomic.LoadUint64(&c.signalsPublished),
		SignalsDeduped:   atomic.LoadUint64(&c.signalsDeduped),
		SignalErrors:     atomic.LoadUint64(&c.signalErrors),
		SignalsDelivered: atomic.LoadUint64(&c.signalsDelivered),
		SignalsDropped:   atomic.LoadUint64(&c.signalsDropped),
		Sessions:         atomic.LoadInt64(&c.sessions),
	}
}

type Handler struct {
	collector *Collector
}

func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	s := h.collector.Snapshot()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	writeMetric(w, "swipehire_requests_total", "counter", "Total number of HTTP requests.", s.Requests)
	writeMetric(w, "swipehire_errors_total", "counter", "Total number of 5xx HTTP responses.", s.Errors)
	writeMetric(w, "swipehire_transitions_total", "counter", "Committed application and connection transitions.", s.Transitions)
	writeMetric(w, "swipehire_conflicts_total", "counter", "Optimistic writes that lost a race.", s.Conflicts)
	writeMetric(w, "swipehire_signals_published_total", "counter", "State-changed signals handed to the bus.", s.SignalsPublished)
	writeMetric(w, "swipehire_signals_deduped_total", "counter", "Signals skipped because the same state was already announced.", s.SignalsDeduped)
	writeMetric(w, "swipehire_signal_errors_total", "counter", "Signal publishes that failed.", s.SignalErrors)
	writeMetric(w, "swipehire_signals_delivered_total", "counter", "Signals queued to a session.", s.SignalsDelivered)
	writeMetric(w, "swipehire_signals_dropped_total", "counter", "Signals dropped on a full session buffer.", s.SignalsDropped)
	writeMetric(w, "swipehire_sessions", "gauge", "Open real-time sessions.", s.Sessions)
}

func writeMetric[T uint64 | int64](w http.ResponseWriter, name, kind, help string, value T) {
	_, _ = fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	_, _ = fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	_, _ = fmt.Fprintf(w, "%s %d\n", name, value)
}
