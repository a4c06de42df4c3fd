// Package syncadapter keeps a client view current by re-pulling authoritative
// state whenever the real-time channel reports a change. It never applies
// partial updates.
package syncadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"swipehire/internal/common"
)

const (
	EventReady        = "ready"
	EventStateChanged = "state-changed"
)

type Event struct {
	Type    string      `json:"type"`
	ActorID common.UUID `json:"actorId"`
}

// Source yields events from the real-time channel. Next blocks until an event
// arrives or the source fails.
type Source interface {
	Next(ctx context.Context) (Event, error)
	Close() error
}

// RefetchFunc re-pulls the full view for the actor.
type RefetchFunc func(ctx context.Context) error

type Options struct {
	// Settle delays a refetch so a burst of signals collapses into one pull.
	Settle time.Duration
	Logger *slog.Logger
}

type Adapter struct {
	source  Source
	refetch RefetchFunc
	settle  time.Duration
	logger  *slog.Logger
}

func New(source Source, refetch RefetchFunc, opts Options) *Adapter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{source: source, refetch: refetch, settle: opts.Settle, logger: logger}
}

// Run consumes the source until ctx ends or the source fails. Signals that
// arrive while a refetch is in flight are folded into a single follow-up
// refetch. Refetch failures are logged and healed by the next signal. The
// source is closed when Run returns.
func (a *Adapter) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dirty := make(chan struct{}, 1)
	failed := make(chan error, 1)
	go a.read(ctx, dirty, failed)
	defer a.source.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-failed:
			return err
		case <-dirty:
		}
		if a.settle > 0 {
			timer := time.NewTimer(a.settle)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			select {
			case <-dirty:
			default:
			}
		}
		if err := a.refetch(ctx); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Warn("refetch failed", slog.String("error", err.Error()))
		}
	}
}

func (a *Adapter) read(ctx context.Context, dirty chan<- struct{}, failed chan<- error) {
	for {
		event, err := a.source.Next(ctx)
		if err != nil {
			failed <- err
			return
		}
		switch event.Type {
		case EventReady, EventStateChanged:
			select {
			case dirty <- struct{}{}:
			default:
			}
		default:
			a.logger.Debug("ignoring real-time event", slog.String("type", event.Type))
		}
	}
}
