package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"realty_crm_backend/internal/matching/ports"
	"realty_crm_backend/internal/matching/service"
	"realty_crm_backend/internal/matching/transport"
	"realty_crm_backend/platform/httpkit"
	"realty_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

// Lifecycle is the notification lifecycle used by the handler.
type Lifecycle interface {
	ListPending(ctx context.Context, userID uuid.UUID) (service.PendingNotifications, error)
	CountPending(ctx context.Context, userID uuid.UUID) (service.PendingCount, error)
	MarkSent(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)
	MarkViewed(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int, error)
	Reset(ctx context.Context, req service.ResetRequest) (ports.ResetResult, error)
}

// Handler serves the matching notification routes.
type Handler struct {
	lifecycle Lifecycle
	evaluator service.Evaluator
	val       *validator.Validator
}

func New(lifecycle Lifecycle, evaluator service.Evaluator, val *validator.Validator) *Handler {
	return &Handler{lifecycle: lifecycle, evaluator: evaluator, val: val}
}

// RegisterRoutes mounts lifecycle routes. trigger guards the evaluation
// routes, which are more expensive than reads.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, trigger gin.HandlerFunc) {
	rg.GET("/notifications", h.ListPending)
	rg.GET("/notifications/count", h.CountPending)
	rg.POST("/notifications/sent", h.MarkSent)
	rg.POST("/notifications/viewed", h.MarkViewed)
	rg.POST("/notifications/reset", h.Reset)
	rg.POST("/leads/:id/evaluate", trigger, h.EvaluateLead)
	rg.POST("/properties/:id/evaluate", trigger, h.EvaluateProperty)
}

func (h *Handler) ListPending(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	pending, err := h.lifecycle.ListPending(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToPendingNotificationsResponse(pending))
}

func (h *Handler) CountPending(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	count, err := h.lifecycle.CountPending(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.PendingCountResponse{
		LeadNotifications:        count.LeadNotifications,
		PartnershipNotifications: count.PartnershipNotifications,
		Total:                    count.Total(),
	})
}

func (h *Handler) MarkSent(c *gin.Context) {
	h.mark(c, h.lifecycle.MarkSent)
}

func (h *Handler) MarkViewed(c *gin.Context) {
	h.mark(c, h.lifecycle.MarkViewed)
}

func (h *Handler) mark(c *gin.Context, fn func(context.Context, uuid.UUID, []uuid.UUID) (int, error)) {
	var req transport.NotificationIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	updated, err := fn(c.Request.Context(), identity.UserID(), req.IDs)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.UpdatedResponse{Updated: updated})
}

func (h *Handler) Reset(c *gin.Context) {
	// The body is optional; an empty one, chunked or not, resets the caller.
	var req transport.ResetRequest
	if c.Request.Body != nil {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	target := identity.UserID()
	if req.UserID != nil {
		target = *req.UserID
	}

	result, err := h.lifecycle.Reset(c.Request.Context(), service.ResetRequest{
		ActorID:      identity.UserID(),
		ActorIsAdmin: identity.HasRole(httpkit.RoleAdmin),
		UserID:       target,
		Reason:       req.Reason,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ResetResponse{
		UserID:                   target,
		LeadNotifications:        result.LeadNotifications,
		PartnershipNotifications: result.PartnershipNotifications,
	})
}

func (h *Handler) EvaluateLead(c *gin.Context) {
	h.evaluate(c, h.evaluator.EvaluateLead)
}

func (h *Handler) EvaluateProperty(c *gin.Context) {
	h.evaluate(c, h.evaluator.EvaluateProperty)
}

// evaluate runs inline so the caller gets the report. Storage failures on
// any pair surface as an error status.
func (h *Handler) evaluate(c *gin.Context, fn func(context.Context, uuid.UUID) (service.EvaluationReport, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	report, err := fn(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToEvaluationResponse(report))
}
