// Package worker consumes payment events and mirrors recorded payments to a
// spreadsheet backend.
package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"mensalidades/internal/amqp"
	"mensalidades/internal/sheets"
)

// SyncWorker bridges the payment event queue and the sheet mirror. The
// mirror is append-only: removal events are acknowledged but skipped.
type SyncWorker struct {
	events    *amqp.Client
	mirror    sheets.PaymentMirror
	processed atomic.Int64
	skipped   atomic.Int64
}

func NewSyncWorker(events *amqp.Client, mirror sheets.PaymentMirror) *SyncWorker {
	return &SyncWorker{events: events, mirror: mirror}
}

// Run consumes events until ctx is cancelled, logging a heartbeat with the
// processed counters once a minute.
func (w *SyncWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.events.ConsumePaymentEvents(ctx, w.handle)
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				slog.InfoContext(ctx, "Sync worker heartbeat",
					"mirrored", w.processed.Load(),
					"skipped", w.skipped.Load())
			}
		}
	})

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

func (w *SyncWorker) handle(ev *amqp.PaymentEvent) error {
	if ev.Action == amqp.ActionRemoved {
		w.skipped.Add(1)
		slog.Info("Skipping removal event, mirror is append-only",
			"child", ev.Payment.ChildName, "month", ev.Payment.Month)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ref, err := w.mirror.AppendPayment(ctx, ev.Payment)
	if err != nil {
		return err
	}
	w.processed.Add(1)
	slog.InfoContext(ctx, "Payment mirrored",
		"action", ev.Action,
		"child", ev.Payment.ChildName,
		"month", ev.Payment.Month,
		"row_ref", ref)
	return nil
}
