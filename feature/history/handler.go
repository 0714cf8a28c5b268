package history

import (
	"errors"

	"inventory-ledger/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the ledger.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the ledger routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/ledger", h.HandleQuery)
}

// HandleQuery returns one page of ledger entries.
// @Summary Query the ledger
// @Description Entries of a shop between two shop-local dates, sorted by event timestamp.
// @Tags ledger
// @Produce json
// @Param shop query string true "Shop domain"
// @Param from query string true "First date (YYYY-MM-DD)"
// @Param to query string true "Last date (YYYY-MM-DD)"
// @Param locations query string false "Comma-separated location ids"
// @Param items query string false "Comma-separated inventory item ids"
// @Param activities query string false "Comma-separated activities"
// @Param sort query string false "asc or desc"
// @Param page query int false "1-based page"
// @Success 200 {object} ledger.Page "Page of entries"
// @Failure 400 {object} map[string]interface{} "Invalid query"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /ledger [get]
func (h *Handler) HandleQuery(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var p Params
	if err := c.QueryParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	page, err := h.service.Query(c.UserContext(), p)
	if err != nil {
		var qerr *QueryError
		if errors.As(err, &qerr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  qerr.Error(),
				"fields": qerr.Fields,
			})
		}
		l.Error("Ledger query failed", zap.String("shop", p.Shop), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(page)
}
