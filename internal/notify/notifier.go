package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"swipehire/internal/common"
	"swipehire/internal/metrics"
)

// Change describes a committed state transition of one entity. CreatedAt
// identifies the record's lifetime: versions restart at 1 when a removed
// record is created again.
type Change struct {
	Entity    string
	State     string
	Version   int64
	CreatedAt time.Time
	Actors    []common.UUID
}

type NotifierConfig struct {
	DedupeTTL      time.Duration
	PublishTimeout time.Duration
}

// Notifier publishes one signal per affected actor per committed change.
// Publishing happens off the caller's goroutine and its failures are only
// logged: a committed transition is never rolled back or delayed by it.
type Notifier struct {
	publisher Publisher
	dedupe    Deduper
	cfg       NotifierConfig
	logger    *slog.Logger
	metrics   *metrics.Collector
	wg        sync.WaitGroup
}

func NewNotifier(publisher Publisher, dedupe Deduper, cfg NotifierConfig, logger *slog.Logger, collector *metrics.Collector) *Notifier {
	if dedupe == nil {
		dedupe = NewMemoryDeduper()
	}
	if cfg.DedupeTTL <= 0 {
		cfg.DedupeTTL = time.Minute
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{publisher: publisher, dedupe: dedupe, cfg: cfg, logger: logger, metrics: collector}
}

func (n *Notifier) Notify(change Change) {
	seen := make(map[common.UUID]struct{}, len(change.Actors))
	for _, actorID := range change.Actors {
		if actorID.IsZero() {
			continue
		}
		if _, ok := seen[actorID]; ok {
			continue
		}
		seen[actorID] = struct{}{}
		key := StateKey(actorID, change)
		n.wg.Add(1)
		go n.deliver(actorID, key, change.Entity)
	}
}

func (n *Notifier) deliver(actorID common.UUID, key, entity string) {
	defer n.wg.Done()
	ctx, cancel := context.WithTimeout(context.Background(), n.cfg.PublishTimeout)
	defer cancel()
	if !n.dedupe.FirstSeen(ctx, key, n.cfg.DedupeTTL) {
		n.metrics.IncSignalsDeduped()
		return
	}
	if err := n.publisher.Publish(ctx, NewSignal(actorID)); err != nil {
		n.metrics.IncSignalErrors()
		n.logger.Warn("signal publish failed",
			slog.String("actor_id", actorID.String()),
			slog.String("entity", entity),
			slog.String("error", err.Error()),
		)
		return
	}
	n.metrics.IncSignalsPublished()
}

// Wait blocks until every publish started so far has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
