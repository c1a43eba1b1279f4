package handler

import (
	"strconv"
	"time"

	"timelock-vault/internal/adapter/http/dto"
	"timelock-vault/internal/adapter/http/middleware"
	"timelock-vault/internal/core/domain"
	"timelock-vault/internal/core/ports"
	"timelock-vault/pkg/apperror"
	"timelock-vault/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// AdminHandler handles the JWT-protected operator endpoints.
type AdminHandler struct {
	pause     ports.PauseSwitch
	eventRepo ports.EventRepository
	log       zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(pause ports.PauseSwitch, eventRepo ports.EventRepository, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		pause:     pause,
		eventRepo: eventRepo,
		log:       log,
	}
}

// SetPause handles PUT /api/v1/admin/pause.
func (h *AdminHandler) SetPause(c *gin.Context) {
	var req dto.PauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.pause.SetPaused(c.Request.Context(), *req.Paused); err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	operator, _ := c.Get(middleware.CtxOperatorKey)
	h.log.Warn().
		Bool("paused", *req.Paused).
		Interface("operator", operator).
		Msg("pause switch toggled")

	response.OK(c, dto.PauseResponse{Paused: *req.Paused})
}

// ListEvents handles GET /api/v1/admin/events.
func (h *AdminHandler) ListEvents(c *gin.Context) {
	limit := defaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.Error(c, apperror.Validation("limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := h.eventRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	items := make([]dto.EventResponse, 0, len(events))
	for _, ev := range events {
		items = append(items, toEventResponse(ev))
	}

	response.OK(c, dto.EventListResponse{
		Items: items,
		Count: len(items),
	})
}

func toEventResponse(ev domain.Event) dto.EventResponse {
	resp := dto.EventResponse{
		ID:         ev.ID.String(),
		Type:       string(ev.Type),
		Account:    ev.Account.String(),
		Asset:      ev.Asset,
		Amount:     ev.Amount,
		NewBalance: ev.NewBalance,
		Reason:     ev.Reason,
		OccurredAt: ev.OccurredAt.UTC().Format(time.RFC3339),
	}
	if !ev.StartTime.IsZero() {
		resp.StartTime = ev.StartTime.UTC().Format(time.RFC3339)
	}
	return resp
}
