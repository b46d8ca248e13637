package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eventhub/internal/api/dto"
	"github.com/spec-kit/eventhub/internal/auth"
	"github.com/spec-kit/eventhub/internal/domain"
	"github.com/spec-kit/eventhub/internal/service"
	apperrors "github.com/spec-kit/eventhub/pkg/util"
)

// RSVPHandler manages attendance endpoints.
type RSVPHandler struct {
	service *service.RSVPService
}

// NewRSVPHandler constructs handler.
func NewRSVPHandler(rsvpService *service.RSVPService) *RSVPHandler {
	return &RSVPHandler{service: rsvpService}
}

// Submit POST /rsvp/:eventId. Public.
func (h *RSVPHandler) Submit(c *fiber.Ctx) error {
	var req dto.RSVPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	rsvp, err := h.service.Submit(c.Context(), c.Params("eventId"), req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "RSVP submitted",
		"rsvp":    rsvpResponse(rsvp),
	})
}

// List GET /rsvp/:eventId. Event owner, admin or staff.
func (h *RSVPHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.PayloadFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	rsvps, err := h.service.List(c.Context(), actor, c.Params("eventId"))
	if err != nil {
		return err
	}
	items := make([]dto.RSVPResponse, 0, len(rsvps))
	for i := range rsvps {
		items = append(items, rsvpResponse(&rsvps[i]))
	}
	return c.JSON(fiber.Map{"rsvps": items})
}

func rsvpResponse(rsvp *domain.RSVP) dto.RSVPResponse {
	return dto.RSVPResponse{
		ID:          rsvp.ID,
		EventID:     rsvp.EventID,
		Name:        rsvp.Name,
		Email:       rsvp.Email,
		SubmittedAt: rsvp.SubmittedAt,
	}
}
