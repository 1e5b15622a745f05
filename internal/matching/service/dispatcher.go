package service

import (
	"context"
	"fmt"

	"realty_crm_backend/internal/events"
	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/platform/apperr"
	"realty_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Evaluator is the synchronous matching entry point.
type Evaluator interface {
	EvaluateLead(ctx context.Context, leadID uuid.UUID) (EvaluationReport, error)
	EvaluateProperty(ctx context.Context, propertyID uuid.UUID) (EvaluationReport, error)
}

// Dispatcher turns lead and property changes into evaluations. With an
// enqueuer it defers work to the background worker; without one it runs
// the evaluation inline.
type Dispatcher struct {
	engine   Evaluator
	enqueuer ports.TriggerEnqueuer
	log      *logger.Logger
}

// NewDispatcher creates a Dispatcher. A nil enqueuer selects sync mode.
func NewDispatcher(engine Evaluator, enqueuer ports.TriggerEnqueuer, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Discard()
	}
	return &Dispatcher{engine: engine, enqueuer: enqueuer, log: log}
}

// Async reports whether triggers are deferred to the worker.
func (d *Dispatcher) Async() bool {
	return d.enqueuer != nil
}

// OnLeadChanged schedules or runs the evaluation of a changed lead.
func (d *Dispatcher) OnLeadChanged(ctx context.Context, leadID uuid.UUID) error {
	if d.enqueuer != nil {
		if err := d.enqueuer.EnqueueLeadEvaluation(ctx, leadID); err != nil {
			return apperr.Wrap(apperr.KindInternal, "enqueue lead evaluation", err)
		}
		return nil
	}
	_, err := d.engine.EvaluateLead(ctx, leadID)
	return err
}

// OnPropertyChanged schedules or runs the evaluation of a changed property.
func (d *Dispatcher) OnPropertyChanged(ctx context.Context, propertyID uuid.UUID) error {
	if d.enqueuer != nil {
		if err := d.enqueuer.EnqueuePropertyEvaluation(ctx, propertyID); err != nil {
			return apperr.Wrap(apperr.KindInternal, "enqueue property evaluation", err)
		}
		return nil
	}
	_, err := d.engine.EvaluateProperty(ctx, propertyID)
	return err
}

// EvaluateLead runs the lead evaluation inline regardless of mode.
func (d *Dispatcher) EvaluateLead(ctx context.Context, leadID uuid.UUID) (EvaluationReport, error) {
	return d.engine.EvaluateLead(ctx, leadID)
}

// EvaluateProperty runs the property evaluation inline regardless of mode.
func (d *Dispatcher) EvaluateProperty(ctx context.Context, propertyID uuid.UUID) (EvaluationReport, error) {
	return d.engine.EvaluateProperty(ctx, propertyID)
}

// Subscribe wires the dispatcher to CRM change events.
func (d *Dispatcher) Subscribe(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(d.handleLeadEvent))
	bus.Subscribe(events.LeadUpdated{}.EventName(), events.HandlerFunc(d.handleLeadEvent))
	bus.Subscribe(events.PropertyCreated{}.EventName(), events.HandlerFunc(d.handlePropertyEvent))
	bus.Subscribe(events.PropertyUpdated{}.EventName(), events.HandlerFunc(d.handlePropertyEvent))
}

func (d *Dispatcher) handleLeadEvent(ctx context.Context, event events.Event) error {
	var leadID uuid.UUID
	switch e := event.(type) {
	case events.LeadCreated:
		leadID = e.LeadID
	case events.LeadUpdated:
		leadID = e.LeadID
	default:
		return fmt.Errorf("unexpected event %s", event.EventName())
	}
	return d.ignoreVanished(d.OnLeadChanged(ctx, leadID))
}

func (d *Dispatcher) handlePropertyEvent(ctx context.Context, event events.Event) error {
	var propertyID uuid.UUID
	switch e := event.(type) {
	case events.PropertyCreated:
		propertyID = e.PropertyID
	case events.PropertyUpdated:
		propertyID = e.PropertyID
	default:
		return fmt.Errorf("unexpected event %s", event.EventName())
	}
	return d.ignoreVanished(d.OnPropertyChanged(ctx, propertyID))
}

// A subject deleted between the change and the evaluation is not a failure.
func (d *Dispatcher) ignoreVanished(err error) error {
	if apperr.Is(err, apperr.KindNotFound) {
		d.log.Debug("match trigger subject no longer exists", "error", err)
		return nil
	}
	return err
}
