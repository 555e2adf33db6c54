package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"leadflow/internal/config"
	"leadflow/internal/models"
	"leadflow/internal/services"
)

// EvaluationHandler drives the model evaluation harness
type EvaluationHandler struct {
	evaluation *services.EvaluationService
	cfg        *config.Config
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(evaluation *services.EvaluationService, cfg *config.Config) *EvaluationHandler {
	return &EvaluationHandler{evaluation: evaluation, cfg: cfg}
}

// Run evaluates candidate models against a labeled dataset. Models and
// dataset default to the configured ones when omitted from the request.
// POST /evaluate
func (h *EvaluationHandler) Run(c *fiber.Ctx) error {
	var req models.EvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	modelIDs := req.Models
	if len(modelIDs) == 0 {
		modelIDs = h.cfg.EvaluationModels
	}
	if len(modelIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No models to evaluate",
		})
	}

	cases := req.Dataset
	if len(cases) == 0 {
		loaded, err := services.LoadDataset(h.cfg.EvaluationDataset)
		if err != nil {
			log.Printf("❌ Failed to load evaluation dataset %s: %v", h.cfg.EvaluationDataset, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load evaluation dataset",
			})
		}
		cases = loaded
	}

	result := h.evaluation.Evaluate(c.Context(), cases, modelIDs)
	log.Printf("📊 Evaluation run %s complete (%d models, %d cases)", result.RunID, len(modelIDs), len(cases))
	return c.JSON(result)
}
