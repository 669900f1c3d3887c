// Package dispatch sends one rendered message per contact, strictly in order,
// pausing between deliveries and reporting progress as it goes.
//
// The engine is a small state machine: idle, running, then completed or
// failed. Progress is available three ways: the job's OnProgress callback,
// Status for polling, and Subscribe for any number of push observers.
//
// The engine does not stop two jobs from running at once. Callers own that
// exclusivity (see session.Session).
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"whatsapp-bulk-sender/internal/render"
	"whatsapp-bulk-sender/pkg/models"
)

const defaultSubscriberBuffer = 32

type Engine struct {
	deliverer Deliverer
	pacer     Pacer
	policy    FailurePolicy
	log       zerolog.Logger

	mu     sync.RWMutex
	status models.ProgressEvent
	subs   map[int]chan models.ProgressEvent
	nextID int
}

func NewEngine(deliverer Deliverer, pacer Pacer, policy FailurePolicy, log zerolog.Logger) *Engine {
	if pacer == nil {
		pacer = NoPacer{}
	}
	if policy == "" {
		policy = FailureIsolate
	}
	return &Engine{
		deliverer: deliverer,
		pacer:     pacer,
		policy:    policy,
		log:       log.With().Str("component", "dispatch").Logger(),
		status:    models.ProgressEvent{State: string(StateIdle), FailedAt: -1},
		subs:      map[int]chan models.ProgressEvent{},
	}
}

func (e *Engine) Policy() FailurePolicy { return e.policy }

// Status returns a snapshot of the current or most recent job.
func (e *Engine) Status() models.ProgressEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

// Subscribe registers a progress observer. Sends never block the job: a
// subscriber that falls behind by more than buffer events loses the extras.
// The returned func unsubscribes and closes the channel.
func (e *Engine) Subscribe(buffer int) (<-chan models.ProgressEvent, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	ch := make(chan models.ProgressEvent, buffer)

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = ch
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
			close(ch)
		})
	}
}

func (e *Engine) publish(ev models.ProgressEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = ev
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Run executes the job on the calling goroutine. Under FailureIsolate it
// returns a nil error once every contact has an outcome; under FailureAbort
// the first failed delivery ends the job with an error wrapping
// ErrDeliveryFailed. A cancelled ctx ends the job at the next suspension point.
func (e *Engine) Run(ctx context.Context, job Job) (Summary, error) {
	if len(job.Contacts) == 0 {
		return Summary{JobID: job.ID, State: StateFailed, FailedAt: -1}, ErrEmptyJob
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	total := len(job.Contacts)
	sum := Summary{
		JobID:    job.ID,
		State:    StateRunning,
		Total:    total,
		FailedAt: -1,
		Results:  make([]Result, 0, total),
	}
	log := e.log.With().Str("job", job.ID).Logger()
	started := time.Now()

	var attachment *string
	if job.AttachmentRef != "" {
		ref := job.AttachmentRef
		attachment = &ref
	}

	log.Info().Int("total", total).Str("policy", string(e.policy)).Msg("dispatch started")
	e.publish(e.event(sum, 0))

	for i, c := range job.Contacts {
		if err := ctx.Err(); err != nil {
			return e.stop(log, sum, i, fmt.Errorf("dispatch cancelled: %w", err))
		}

		msg := render.Render(job.Template, c, job.AttachmentRef)
		err := e.deliverer.Deliver(ctx, models.DeliveryRequest{
			Phone:       c.Phone,
			Message:     msg,
			PDFURL:      attachment,
			ContactName: c.Name,
		})

		if err != nil {
			sum.Failed++
			sum.Results = append(sum.Results, Result{Contact: c, Message: msg, Outcome: OutcomeFailed, Reason: err.Error()})
			log.Warn().Err(err).Str("contact", c.ID).Int("index", i).Msg("delivery failed")
			if e.policy == FailureAbort {
				return e.stop(log, sum, i, fmt.Errorf("%w: contact %s: %v", ErrDeliveryFailed, c.ID, err))
			}
		} else {
			sum.Sent++
			sum.Results = append(sum.Results, Result{Contact: c, Message: msg, Outcome: OutcomeSent})
			log.Debug().Str("contact", c.ID).Int("index", i).Msg("message delivered")
		}

		processed := i + 1
		ev := e.event(sum, processed)
		e.publish(ev)
		if job.OnProgress != nil {
			job.OnProgress(sum.Sent, ev.Percent)
		}

		if processed < total {
			if err := e.pacer.Pause(ctx); err != nil {
				return e.stop(log, sum, processed, fmt.Errorf("dispatch cancelled: %w", err))
			}
		}
	}

	sum.State = StateCompleted
	e.publish(e.event(sum, total))
	log.Info().Int("sent", sum.Sent).Int("failed", sum.Failed).Dur("took", time.Since(started)).Msg("dispatch completed")
	return sum, nil
}

func (e *Engine) stop(log zerolog.Logger, sum Summary, at int, err error) (Summary, error) {
	sum.State = StateFailed
	sum.FailedAt = at
	processed := len(sum.Results)
	if e.policy == FailureAbort && sum.Failed > 0 {
		// the failing item does not advance progress
		processed--
	}
	e.publish(e.event(sum, processed))
	log.Error().Err(err).Int("failed_at", at).Int("sent", sum.Sent).Msg("dispatch stopped")
	return sum, err
}

func (e *Engine) event(sum Summary, processed int) models.ProgressEvent {
	percent := 0.0
	if sum.Total > 0 {
		percent = 100 * float64(processed) / float64(sum.Total)
	}
	return models.ProgressEvent{
		JobID:     sum.JobID,
		State:     string(sum.State),
		Total:     sum.Total,
		Processed: processed,
		Sent:      sum.Sent,
		Failed:    sum.Failed,
		Percent:   percent,
		FailedAt:  sum.FailedAt,
	}
}
