package commands

import (
	"context"
	"log/slog"

	"scent-fulfillment/internal/pkg/clock"
	"scent-fulfillment/internal/usecase/readmodel"
	"scent-fulfillment/internal/usecase/shared"
)

const maxRelayAttempts = 10

// NotificationRelay forwards outbox jobs to the event publisher. It only
// moves triggers; what downstream does with them is not its concern.
type NotificationRelay struct {
	uow       shared.UnitOfWork
	publisher shared.EventPublisher
	clock     clock.Clock
	logger    *slog.Logger
}

func NewNotificationRelay(uow shared.UnitOfWork, publisher shared.EventPublisher, clk clock.Clock, logger *slog.Logger) *NotificationRelay {
	return &NotificationRelay{uow: uow, publisher: publisher, clock: clk, logger: logger}
}

type RelayStats struct {
	Sent   int
	Failed int
}

// RunOnce publishes up to limit due jobs. Relays running in parallel skip
// each other's locked rows.
func (r *NotificationRelay) RunOnce(ctx context.Context, limit int32) (RelayStats, error) {
	var stats RelayStats
	err := r.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		stats = RelayStats{}
		jobs, err := tx.Notifications().ClaimDue(ctx, r.clock.Now(), limit)
		if err != nil {
			return err
		}
		for _, job := range jobs {
			status, lastErr := r.publish(ctx, job)
			if err := tx.Notifications().UpdateStatus(ctx, job.ID, status, lastErr); err != nil {
				return err
			}
			if status == readmodel.JobStatusSent {
				stats.Sent++
			} else {
				stats.Failed++
			}
		}
		return nil
	})
	return stats, err
}

func (r *NotificationRelay) publish(ctx context.Context, job readmodel.NotificationJobRM) (string, *string) {
	if err := r.publisher.Publish(ctx, job.Topic, job.ID.String(), job.Payload); err != nil {
		msg := err.Error()
		r.logger.Warn("notification publish failed", "job_id", job.ID.String(), "kind", job.Kind, "error", msg)
		if job.Attempts+1 >= maxRelayAttempts {
			return readmodel.JobStatusFailed, &msg
		}
		return readmodel.JobStatusQueued, &msg
	}
	return readmodel.JobStatusSent, nil
}
