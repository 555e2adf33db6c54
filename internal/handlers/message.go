package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"leadflow/internal/models"
	"leadflow/internal/services"
)

// MessageHandler handles synchronous outreach drafting
type MessageHandler struct {
	leads *services.LeadService
	grok  *services.GrokService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(leads *services.LeadService, grok *services.GrokService) *MessageHandler {
	return &MessageHandler{leads: leads, grok: grok}
}

// Generate drafts an outreach message for a lead without marking it sent
// POST /messages/generate
func (h *MessageHandler) Generate(c *fiber.Ctx) error {
	var req models.GenerateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.LeadID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "lead_id is required",
		})
	}

	lead, err := h.leads.GetByID(c.Context(), req.LeadID)
	if err != nil {
		return leadError(c, err, "Failed to generate message")
	}

	draft := h.grok.DraftMessage(c.Context(), lead.QualificationAttributes(), req.Tone, req.Goal, req.Model)
	if draft.Status == services.StatusFailure {
		log.Printf("❌ Message generation failed for lead %s: %s", lead.ID.Hex(), draft.Error)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Message generation failed",
		})
	}

	return c.JSON(draft)
}
