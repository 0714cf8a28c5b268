package actions

import (
	"inventory-ledger/core/logger"
	"inventory-ledger/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HeaderShopDomain names the shop a batch belongs to.
const HeaderShopDomain = "X-Shop-Domain"

// Handler handles HTTP requests for first-party actions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the action routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/actions", h.HandleSubmit)
}

// HandleSubmit records a batch of inventory actions.
// @Summary Submit inventory actions
// @Description Reconciles each action independently and reports a result per event.
// @Tags actions
// @Accept json
// @Produce json
// @Param X-Shop-Domain header string false "Shop domain (or body field shop)"
// @Param batch body Batch true "Actions"
// @Success 200 {object} BatchResult "Per-event results"
// @Failure 400 {object} map[string]interface{} "Unparseable batch"
// @Router /actions [post]
func (h *Handler) HandleSubmit(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var batch Batch
	if err := c.BodyParser(&batch); err != nil {
		l.Debug("Unparseable action batch", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	shop := c.Get(HeaderShopDomain)
	if shop == "" {
		shop = batch.Shop
	}
	if shop == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "shop domain is required",
		})
	}

	if err := h.service.ValidateBatch(&batch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "invalid batch",
			"fields": utils.ValidationErrors(err),
		})
	}

	result := h.service.Submit(c.UserContext(), shop, batch.Events)
	if !result.Success {
		l.Info("Action batch partially rejected", zap.String("shop", shop), zap.Int("events", len(batch.Events)))
	}
	return c.JSON(result)
}
