package handlers

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"leadflow/internal/models"
	"leadflow/internal/services"
)

// leadFinder fetches leads at notify dispatch time. Satisfied by *services.LeadService.
type leadFinder interface {
	GetByID(ctx context.Context, id string) (*models.Lead, error)
}

// outreachScheduler queues the draft-and-mark task for one lead.
// Satisfied by *services.WorkflowService.
type outreachScheduler interface {
	ScheduleNotification(lead *models.Lead, tone, goal, model string)
}

// LeadHandler handles lead CRUD and the qualification/notification triggers
type LeadHandler struct {
	leads      *services.LeadService
	activities *services.ActivityService
	workflow   *services.WorkflowService
	dashboard  *services.DashboardService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leads *services.LeadService, activities *services.ActivityService, workflow *services.WorkflowService, dashboard *services.DashboardService) *LeadHandler {
	return &LeadHandler{
		leads:      leads,
		activities: activities,
		workflow:   workflow,
		dashboard:  dashboard,
	}
}

// List returns all leads, optionally filtered by stage
// GET /leads?stage=qualified
func (h *LeadHandler) List(c *fiber.Ctx) error {
	stage := models.Stage(c.Query("stage"))

	leads, err := h.leads.List(c.Context(), stage)
	if err != nil {
		log.Printf("❌ Failed to list leads: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list leads",
		})
	}
	return c.JSON(leads)
}

// Get returns a single lead
// GET /leads/:id
func (h *LeadHandler) Get(c *fiber.Ctx) error {
	lead, err := h.leads.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return leadError(c, err, "Failed to get lead")
	}
	return c.JSON(lead)
}

// Create validates and inserts a new lead, then schedules its qualification
// POST /leads
func (h *LeadHandler) Create(c *fiber.Ctx) error {
	var req models.CreateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if missing := missingLeadFields(&req); len(missing) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields: " + strings.Join(missing, ", "),
		})
	}

	lead, err := h.leads.Create(c.Context(), &req)
	if err != nil {
		log.Printf("❌ Failed to create lead: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create lead",
		})
	}

	h.dashboard.Invalidate()
	h.workflow.ScheduleQualification(lead, "")
	log.Printf("✅ Lead created: %s (%s), qualification scheduled", lead.ID.Hex(), lead.Company)

	return c.Status(fiber.StatusCreated).JSON(lead)
}

// Update applies a partial update; changes to company, industry, or employee
// count re-schedule qualification
// PATCH /leads/:id
func (h *LeadHandler) Update(c *fiber.Ctx) error {
	var req models.UpdateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Qualification re-runs only when an attribute actually changed, so the
	// prior values are needed before the patch lands.
	prev, err := h.leads.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return leadError(c, err, "Failed to update lead")
	}

	lead, err := h.leads.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return leadError(c, err, "Failed to update lead")
	}

	h.dashboard.Invalidate()
	if req.TriggersQualification(prev) {
		h.workflow.ScheduleQualification(lead, "")
		log.Printf("🔄 Lead %s updated, re-qualification scheduled", lead.ID.Hex())
	}

	return c.JSON(lead)
}

// Delete removes a lead and cascades its activity trail
// DELETE /leads/:id
func (h *LeadHandler) Delete(c *fiber.Ctx) error {
	lead, err := h.leads.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return leadError(c, err, "Failed to delete lead")
	}

	if err := h.leads.Delete(c.Context(), c.Params("id")); err != nil {
		return leadError(c, err, "Failed to delete lead")
	}

	deleted, err := h.activities.DeleteByLead(c.Context(), lead.ID)
	if err != nil {
		log.Printf("⚠️ Lead %s deleted but activity cascade failed: %v", lead.ID.Hex(), err)
	}

	h.dashboard.Invalidate()
	log.Printf("🗑️ Lead %s deleted (%d activities cascaded)", lead.ID.Hex(), deleted)

	return c.JSON(fiber.Map{
		"success":            true,
		"deleted_activities": deleted,
	})
}

// Notify schedules outreach drafting for every requested lead that is in the
// qualified stage at dispatch time. Other leads are skipped, not errors.
// POST /leads/notify
func (h *LeadHandler) Notify(c *fiber.Ctx) error {
	var req models.NotifyLeadsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.LeadIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "lead_ids is required",
		})
	}

	resp := dispatchNotifications(c.Context(), h.leads, h.workflow, &req)

	log.Printf("📨 Notify batch: %d scheduled, %d skipped", resp.Scheduled, len(resp.SkippedIDs))
	return c.JSON(resp)
}

// dispatchNotifications applies the batch filter: only leads in the qualified
// stage at dispatch time are scheduled, everything else lands in skipped_ids.
// A store fault during lookup also skips the lead, but is logged so a partial
// outage is distinguishable from legitimate skips.
func dispatchNotifications(ctx context.Context, finder leadFinder, scheduler outreachScheduler, req *models.NotifyLeadsRequest) models.NotifyLeadsResponse {
	resp := models.NotifyLeadsResponse{}
	for _, id := range req.LeadIDs {
		lead, err := finder.GetByID(ctx, id)
		if err != nil {
			log.Printf("⚠️ Notify lookup failed for lead %s: %v", id, err)
			resp.SkippedIDs = append(resp.SkippedIDs, id)
			continue
		}
		if lead.Stage != models.StageQualified {
			resp.SkippedIDs = append(resp.SkippedIDs, id)
			continue
		}
		scheduler.ScheduleNotification(lead, req.Tone, req.Goal, req.Model)
		resp.Scheduled++
	}
	return resp
}

// Respond marks an inbound reply: stage moves to engaged and a human-authored
// response activity is appended
// PATCH /leads/:id/respond
func (h *LeadHandler) Respond(c *fiber.Ctx) error {
	lead, err := h.workflow.MarkResponseReceived(c.Context(), c.Params("id"))
	if err != nil {
		return leadError(c, err, "Failed to mark response received")
	}

	log.Printf("✅ Response received for lead %s, stage -> %s", lead.ID.Hex(), lead.Stage)
	return c.JSON(lead)
}

// GetMessages returns the model-generated outreach messages for a lead
// GET /leads/:id/messages
func (h *LeadHandler) GetMessages(c *fiber.Ctx) error {
	lead, err := h.leads.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return leadError(c, err, "Failed to get messages")
	}

	messages, err := h.activities.ListMessages(c.Context(), lead.ID)
	if err != nil {
		log.Printf("❌ Failed to list messages for lead %s: %v", lead.ID.Hex(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list messages",
		})
	}
	return c.JSON(messages)
}

// GetActivities returns a lead's full activity trail, most recent first
// GET /leads/:id/activities
func (h *LeadHandler) GetActivities(c *fiber.Ctx) error {
	lead, err := h.leads.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return leadError(c, err, "Failed to get activities")
	}

	activities, err := h.activities.ListByLead(c.Context(), lead.ID)
	if err != nil {
		log.Printf("❌ Failed to list activities for lead %s: %v", lead.ID.Hex(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list activities",
		})
	}
	return c.JSON(activities)
}

// leadError maps service errors to the right status code
func leadError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, services.ErrLeadNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lead not found",
		})
	}
	log.Printf("❌ %s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": message,
	})
}

// missingLeadFields returns the required creation fields that are absent
func missingLeadFields(req *models.CreateLeadRequest) []string {
	var missing []string
	if strings.TrimSpace(req.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(req.Contact) == "" {
		missing = append(missing, "contact")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(req.Value) == "" {
		missing = append(missing, "value")
	}
	return missing
}
