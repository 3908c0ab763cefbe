package scheduler

import (
	"context"
	"fmt"

	enquiriesdomain "trainops_backend/internal/enquiries/domain"
	enquiriesrepo "trainops_backend/internal/enquiries/repository"
	"trainops_backend/internal/events"
	"trainops_backend/platform/apperr"
	"trainops_backend/platform/config"
	"trainops_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	enquiries enquiriesrepo.Repository
	bus       events.Bus
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		enquiries: enquiriesrepo.New(pool),
		bus:       bus,
		log:       log,
	}

	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)
	mux.HandleFunc(TaskNotificationOutboxDue, w.handleNotificationOutboxDue)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleFollowUpReminder fires the reminder only if the enquiry is
// still waiting on its follow-up. A lead that moved on since the
// reminder was scheduled is silently skipped.
func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return err
	}

	enquiryID, err := uuid.Parse(payload.EnquiryID)
	if err != nil {
		return err
	}

	enquiry, err := w.enquiries.GetByID(ctx, enquiryID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}

	if enquiry.Status != enquiriesdomain.StatusFollowUp {
		return nil
	}

	if w.bus == nil {
		return nil
	}
	w.bus.Publish(ctx, events.FollowUpDue{
		BaseEvent:   events.NewBaseEvent(),
		EnquiryID:   enquiry.ID,
		EnquiryName: enquiry.Name,
		WorkerID:    enquiry.AssignedWorkerID,
	})
	return nil
}

func (w *Worker) handleNotificationOutboxDue(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseNotificationOutboxDuePayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return err
	}

	return w.bus.PublishSync(ctx, events.NotificationOutboxDue{
		BaseEvent: events.NewBaseEvent(),
		OutboxID:  outboxID,
	})
}
