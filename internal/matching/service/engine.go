// Package service runs lead/property matching and manages the lifecycle of
// the resulting notifications.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"realty_crm_backend/internal/events"
	"realty_crm_backend/internal/matching/domain"
	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/platform/apperr"
	"realty_crm_backend/platform/logger"
	"realty_crm_backend/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	TriggerLead     = "lead"
	TriggerProperty = "property"

	KindLeadNotification        = "lead"
	KindPartnershipNotification = "partnership"

	defaultMaxCandidates   = 500
	defaultPairConcurrency = 4
	defaultTimeout         = 30 * time.Second
)

// SnapshotResolver builds partnership contact snapshots.
type SnapshotResolver interface {
	Snapshot(ctx context.Context, lead domain.Lead, property domain.Property, priceCents int64) (domain.ContactSnapshot, error)
}

// PairFailure is a pair that could not be applied.
type PairFailure struct {
	LeadID     uuid.UUID
	PropertyID uuid.UUID
	Err        error
}

// EvaluationReport summarises one trigger run.
type EvaluationReport struct {
	Trigger                         string
	SubjectID                       uuid.UUID
	Skipped                         bool
	Truncated                       bool
	Candidates                      int
	Matched                         int
	LeadNotificationsCreated        int
	PartnershipNotificationsCreated int
	Failures                        []PairFailure
}

// Created is the number of notifications stored by the run.
func (r EvaluationReport) Created() int {
	return r.LeadNotificationsCreated + r.PartnershipNotificationsCreated
}

// EngineDeps wires the engine to its ports.
type EngineDeps struct {
	Leads      ports.LeadReader
	Properties ports.PropertyReader
	Writer     ports.LeadMatchWriter
	Store      ports.NotificationStore
	Contacts   SnapshotResolver
	Bus        events.Bus
	Log        *logger.Logger
}

// EngineOptions bounds a single run.
type EngineOptions struct {
	MaxCandidates   int
	PairConcurrency int
	Timeout         time.Duration
}

// Engine evaluates a changed lead or property against its candidates.
type Engine struct {
	leads      ports.LeadReader
	properties ports.PropertyReader
	writer     ports.LeadMatchWriter
	store      ports.NotificationStore
	contacts   SnapshotResolver
	bus        events.Bus
	log        *logger.Logger
	opts       EngineOptions
}

// NewEngine creates an Engine. Zero options fall back to defaults.
func NewEngine(deps EngineDeps, opts EngineOptions) *Engine {
	if opts.MaxCandidates < 1 {
		opts.MaxCandidates = defaultMaxCandidates
	}
	if opts.PairConcurrency < 1 {
		opts.PairConcurrency = defaultPairConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{
		leads:      deps.Leads,
		properties: deps.Properties,
		writer:     deps.Writer,
		store:      deps.Store,
		contacts:   deps.Contacts,
		bus:        deps.Bus,
		log:        log,
		opts:       opts,
	}
}

// EvaluateLead matches an active lead against available properties.
// An inactive lead is a no-op.
func (e *Engine) EvaluateLead(ctx context.Context, leadID uuid.UUID) (EvaluationReport, error) {
	report := EvaluationReport{Trigger: TriggerLead, SubjectID: leadID}
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	start := time.Now()

	lead, err := e.leads.GetLead(ctx, leadID)
	if err != nil {
		return e.finish(report, start, err)
	}
	if lead.Status != domain.LeadStatusActive || lead.MaxPriceCents <= 0 {
		report.Skipped = true
		return e.finish(report, start, nil)
	}

	var minPrice int64
	if lead.MinPriceCents != nil && *lead.MinPriceCents > 0 {
		minPrice = *lead.MinPriceCents
	}
	candidates, err := e.properties.ListAvailableProperties(ctx, ports.PropertyFilter{
		PropertyType:  lead.PropertyType,
		Interest:      lead.Interest,
		MinPriceCents: minPrice,
		MaxPriceCents: lead.MaxPriceCents,
		Limit:         e.opts.MaxCandidates,
	})
	if err != nil {
		return e.finish(report, start, err)
	}

	report = e.markTruncated(report, len(candidates))

	pairs := make([]pair, 0, len(candidates))
	for _, property := range candidates {
		pairs = append(pairs, pair{lead: lead, property: property})
	}
	return e.finish(e.applyAll(ctx, report, pairs), start, nil)
}

// EvaluateProperty matches an available property against active leads.
// A property that is not available is a no-op.
func (e *Engine) EvaluateProperty(ctx context.Context, propertyID uuid.UUID) (EvaluationReport, error) {
	report := EvaluationReport{Trigger: TriggerProperty, SubjectID: propertyID}
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()
	start := time.Now()

	property, err := e.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return e.finish(report, start, err)
	}
	if property.Status != domain.PropertyStatusAvailable {
		report.Skipped = true
		return e.finish(report, start, nil)
	}

	candidates, err := e.leads.ListActiveLeads(ctx, ports.LeadFilter{
		PropertyType:   property.PropertyType,
		RentPriceCents: property.RentPriceCents,
		SalePriceCents: property.SalePriceCents,
		Limit:          e.opts.MaxCandidates,
	})
	if err != nil {
		return e.finish(report, start, err)
	}

	report = e.markTruncated(report, len(candidates))

	pairs := make([]pair, 0, len(candidates))
	for _, lead := range candidates {
		pairs = append(pairs, pair{lead: lead, property: property})
	}
	return e.finish(e.applyAll(ctx, report, pairs), start, nil)
}

// markTruncated flags a run whose candidate query hit MaxCandidates: pairs
// beyond the bound were not evaluated.
func (e *Engine) markTruncated(report EvaluationReport, candidates int) EvaluationReport {
	if candidates < e.opts.MaxCandidates {
		return report
	}
	report.Truncated = true
	e.log.CandidatesTruncated(report.Trigger, report.SubjectID.String(), e.opts.MaxCandidates)
	return report
}

type pair struct {
	lead     domain.Lead
	property domain.Property
}

type pairOutcome int

const (
	outcomeNoMatch pairOutcome = iota
	outcomeDiscarded
	outcomeExisting
	outcomeLeadCreated
	outcomePartnershipCreated
)

// applyAll applies pairs with bounded concurrency. A failed pair never stops
// the others, and stored notifications are kept when a later pair fails.
func (e *Engine) applyAll(ctx context.Context, report EvaluationReport, pairs []pair) EvaluationReport {
	report.Candidates = len(pairs)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(e.opts.PairConcurrency)

	for _, p := range pairs {
		g.Go(func() error {
			matched, outcome, err := e.applyPair(ctx, p.lead, p.property)

			mu.Lock()
			defer mu.Unlock()
			if matched {
				report.Matched++
			}
			if err != nil {
				report.Failures = append(report.Failures, PairFailure{LeadID: p.lead.ID, PropertyID: p.property.ID, Err: err})
				return nil
			}
			switch outcome {
			case outcomeLeadCreated:
				report.LeadNotificationsCreated++
			case outcomePartnershipCreated:
				report.PartnershipNotificationsCreated++
			}
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (e *Engine) applyPair(ctx context.Context, lead domain.Lead, property domain.Property) (bool, pairOutcome, error) {
	if err := ctx.Err(); err != nil {
		return false, outcomeNoMatch, err
	}

	result := domain.Evaluate(lead, property)
	if !result.Matched {
		return false, outcomeNoMatch, nil
	}

	switch domain.RouteMatch(lead, property) {
	case domain.RouteInternal:
		outcome, err := e.applyInternal(ctx, lead, property)
		return true, outcome, err
	case domain.RoutePartnership:
		outcome, err := e.applyPartnership(ctx, lead, property, result.PriceCents)
		return true, outcome, err
	default:
		return true, outcomeDiscarded, nil
	}
}

func (e *Engine) applyInternal(ctx context.Context, lead domain.Lead, property domain.Property) (pairOutcome, error) {
	created, err := e.store.UpsertLeadNotification(ctx, ports.LeadNotificationParams{
		LeadID:     lead.ID,
		PropertyID: property.ID,
		UserID:     lead.UserID,
	})
	if err != nil {
		return outcomeNoMatch, err
	}

	if created || lead.MatchedPropertyID == nil {
		if err := e.writer.SetLeadMatchedProperty(ctx, lead.ID, property.ID); err != nil {
			return outcomeNoMatch, err
		}
	}
	if !created {
		return outcomeExisting, nil
	}

	metrics.NotificationsCreated.WithLabelValues(KindLeadNotification).Inc()
	e.log.NotificationCreated(KindLeadNotification, lead.ID.String(), property.ID.String(), lead.UserID.String())
	e.publish(ctx, events.LeadNotificationCreated{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		PropertyID: property.ID,
		UserID:     lead.UserID,
	})
	return outcomeLeadCreated, nil
}

func (e *Engine) applyPartnership(ctx context.Context, lead domain.Lead, property domain.Property, priceCents int64) (pairOutcome, error) {
	snapshot, err := e.contacts.Snapshot(ctx, lead, property, priceCents)
	if err != nil {
		return outcomeNoMatch, err
	}

	n := domain.PartnershipNotification{
		FromUserID: lead.UserID,
		ToUserID:   property.UserID,
		LeadID:     lead.ID,
		PropertyID: property.ID,
		Snapshot:   snapshot,
		MatchType:  lead.Interest,
	}
	created, err := e.store.CreatePartnershipNotification(ctx, n)
	if err != nil {
		return outcomeNoMatch, err
	}
	if !created {
		return outcomeExisting, nil
	}

	metrics.NotificationsCreated.WithLabelValues(KindPartnershipNotification).Inc()
	e.log.NotificationCreated(KindPartnershipNotification, lead.ID.String(), property.ID.String(), property.UserID.String())
	e.publish(ctx, events.PartnershipNotificationCreated{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        lead.ID,
		PropertyID:    property.ID,
		FromUserID:    lead.UserID,
		ToUserID:      property.UserID,
		MatchType:     string(lead.Interest),
		PropertyTitle: property.Title,
	})
	return outcomePartnershipCreated, nil
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(ctx, event)
}

// finish records metrics and logs, then returns the report with the run
// error or, when pairs failed on storage, the joined pair errors. Pairs that
// vanished mid-run (NotFound) are reported but not returned as errors.
func (e *Engine) finish(report EvaluationReport, start time.Time, runErr error) (EvaluationReport, error) {
	metrics.MatchDuration.WithLabelValues(report.Trigger).Observe(time.Since(start).Seconds())

	if runErr != nil {
		metrics.MatchEvaluations.WithLabelValues(report.Trigger, "error").Inc()
		if !apperr.Is(runErr, apperr.KindNotFound) {
			e.log.Error("match evaluation failed", "trigger", report.Trigger, "subject_id", report.SubjectID, "error", runErr)
		}
		return report, runErr
	}

	metrics.MatchCandidates.WithLabelValues(report.Trigger).Observe(float64(report.Candidates))

	var errs []error
	for _, f := range report.Failures {
		kind := "storage"
		if apperr.Is(f.Err, apperr.KindNotFound) {
			kind = "not_found"
		} else {
			errs = append(errs, f.Err)
		}
		metrics.PairFailures.WithLabelValues(kind).Inc()
		e.log.PairFailed(f.LeadID.String(), f.PropertyID.String(), f.Err)
	}

	outcome := "ok"
	switch {
	case report.Skipped:
		outcome = "skipped"
	case len(errs) > 0:
		outcome = "partial"
	}
	metrics.MatchEvaluations.WithLabelValues(report.Trigger, outcome).Inc()
	e.log.MatchEvaluated(report.Trigger, report.SubjectID.String(), report.Candidates, report.Matched, report.Created(), len(report.Failures))

	return report, errors.Join(errs...)
}
