package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eventhub/internal/api/dto"
	"github.com/spec-kit/eventhub/internal/auth"
	"github.com/spec-kit/eventhub/internal/domain"
	"github.com/spec-kit/eventhub/internal/service"
	apperrors "github.com/spec-kit/eventhub/pkg/util"
)

// EventsHandler manages event endpoints.
type EventsHandler struct {
	service *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{service: eventService}
}

// Create POST /events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.PayloadFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" || req.Date.IsZero() {
		return apperrors.NewValidationError("title and date are required", nil)
	}

	event, err := h.service.Create(c.Context(), actor, service.EventCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Location:     req.Location,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"event": eventResponse(event)})
}

// Get GET /events/:id. Public projection; moderation state is not exposed.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	event, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"event": eventProjection(event)})
}

// Update PATCH /events/:id.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.PayloadFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	event, err := h.service.Update(c.Context(), actor, c.Params("id"), updateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"event": eventResponse(event)})
}

// Delete DELETE /events/:id.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	actor, ok := auth.PayloadFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "event deleted"})
}

// ChangeStatus PATCH /events/:id/status. Accepts field edits alongside the
// status and triggers the moderation side effects.
func (h *EventsHandler) ChangeStatus(c *fiber.Ctx) error {
	actor, ok := auth.PayloadFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	event, err := h.service.ChangeStatus(c.Context(), actor, c.Params("id"), updateInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"event": eventResponse(event)})
}

// ListMine GET /events/mine.
func (h *EventsHandler) ListMine(c *fiber.Ctx) error {
	actor, ok := auth.PayloadFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var status *domain.EventStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.EventStatus(raw)
		status = &s
	}
	result, err := h.service.ListOwn(c.Context(), actor, status, parseInt(c.Query("page"), 1), parseInt(c.Query("limit"), 10))
	if err != nil {
		return err
	}
	return c.JSON(listResponse(result, eventResponses(result.Events)))
}

// ListPending GET /events/pending. Admin only.
func (h *EventsHandler) ListPending(c *fiber.Ctx) error {
	actor, ok := auth.PayloadFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	result, err := h.service.ListPending(c.Context(), actor, parseInt(c.Query("page"), 1), parseInt(c.Query("limit"), 10))
	if err != nil {
		return err
	}
	return c.JSON(listResponse(result, eventResponses(result.Events)))
}

// ListPublic GET /events/public. Approved events only, keyword search.
func (h *EventsHandler) ListPublic(c *fiber.Ctx) error {
	result, err := h.service.SearchPublic(c.Context(), c.Query("search"), parseInt(c.Query("page"), 1), parseInt(c.Query("limit"), 10))
	if err != nil {
		return err
	}
	items := make([]dto.EventProjection, 0, len(result.Events))
	for i := range result.Events {
		items = append(items, eventProjection(&result.Events[i]))
	}
	return c.JSON(listResponse(result, items))
}

func updateInput(req dto.UpdateEventRequest) service.EventUpdateInput {
	return service.EventUpdateInput{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Location:     req.Location,
		CustomFields: req.CustomFields,
		Status:       req.Status,
	}
}

func eventResponse(event *domain.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:           event.ID,
		Title:        event.Title,
		Description:  event.Description,
		Date:         event.Date,
		Location:     event.Location,
		OwnerID:      event.OwnerID,
		CustomFields: event.CustomFields,
		Status:       event.Status,
		CreatedAt:    event.CreatedAt,
		UpdatedAt:    event.UpdatedAt,
	}
}

func eventResponses(events []domain.Event) []dto.EventResponse {
	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, eventResponse(&events[i]))
	}
	return items
}

func eventProjection(event *domain.Event) dto.EventProjection {
	return dto.EventProjection{
		ID:           event.ID,
		Title:        event.Title,
		Description:  event.Description,
		Date:         event.Date,
		Location:     event.Location,
		OwnerID:      event.OwnerID,
		CustomFields: event.CustomFields,
	}
}

func listResponse(result *service.EventPageResult, items any) dto.EventListResponse {
	return dto.EventListResponse{
		Events:     items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages(),
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
