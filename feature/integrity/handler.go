package integrity

import (
	"errors"

	"inventory-ledger/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/schema", h.HandleSchemaCheck)
	group.Get("/deadletters", h.HandleDeadLetterCheck)
}

// HandleIntegrityCheck triggers all integrity checks.
// @Summary Run All Integrity Checks
// @Description Checks the database schema and the dead-letter backlog.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering all integrity checks")

	report := make(map[string]interface{})

	if schema, err := h.service.CheckSchema(); err != nil {
		report["schema"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["schema"] = schema
	}

	if backlog, err := h.service.CheckDeadLetters(c.UserContext()); err != nil {
		report["deadletters"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		report["deadletters"] = backlog
	}

	return c.JSON(report)
}

// HandleSchemaCheck checks and optionally migrates the ledger schema.
// @Summary Check Schema
// @Description Checks that the ledger and shops tables have every expected column. With fix=true the ledger table is migrated first.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Migrate the ledger table"
// @Success 200 {object} checks.SchemaReport "Schema Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/schema [get]
func (h *Handler) HandleSchemaCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if c.Query("fix") == "true" {
		l.Info("Migrating ledger schema")
		if err := h.service.FixSchema(); err != nil {
			l.Error("Schema migration failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   "Failed to migrate schema",
				"details": err.Error(),
			})
		}
	}

	report, err := h.service.CheckSchema()
	if err != nil {
		l.Error("Schema check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !report.Matched {
		l.Warn("Schema mismatch detected", zap.Any("tables", report.Tables))
	}

	return c.JSON(report)
}

// HandleDeadLetterCheck reports the dead-letter backlog.
// @Summary Check Dead Letters
// @Description Counts webhook deliveries waiting in dead-letter storage.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.BacklogReport "Backlog Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Failure 503 {object} map[string]string "No dead-letter storage"
// @Router /integrity/deadletters [get]
func (h *Handler) HandleDeadLetterCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.CheckDeadLetters(c.UserContext())
	if errors.Is(err, ErrNoArchive) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Dead-letter check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if report.Count > 0 {
		l.Warn("Dead-lettered deliveries waiting", zap.Int("count", report.Count), zap.String("oldest", report.Oldest))
	}

	return c.JSON(report)
}
