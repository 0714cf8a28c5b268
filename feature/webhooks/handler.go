package webhooks

import (
	"inventory-ledger/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Platform webhook headers.
const (
	HeaderShopDomain = "X-Shopify-Shop-Domain"
	HeaderTopic      = "X-Shopify-Topic"
	HeaderWebhookID  = "X-Shopify-Webhook-Id"
)

// Handler handles webhook deliveries over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the webhook routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/webhooks")
	group.Post("/inventory_levels/update", h.HandleInventoryLevelUpdate)
	group.Post("/refunds/create", h.HandleRefundCreate)
}

// HandleInventoryLevelUpdate ingests the generic quantity webhook.
// @Summary Inventory level webhook
// @Description Records a quantity change as a placeholder entry, or drops it when another channel already recorded it.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Shopify-Shop-Domain header string true "Shop domain"
// @Success 200 {object} Report "Delivery handled or dead-lettered"
// @Failure 500 {object} map[string]string "Delivery failed and was not archived"
// @Router /webhooks/inventory_levels/update [post]
func (h *Handler) HandleInventoryLevelUpdate(c *fiber.Ctx) error {
	return h.handle(c, TopicInventoryLevelUpdate)
}

// HandleRefundCreate ingests the refund webhook.
// @Summary Refund webhook
// @Description Records restocked refund lines as refund entries, upgrading matching placeholders.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Shopify-Shop-Domain header string true "Shop domain"
// @Success 200 {object} Report "Delivery handled or dead-lettered"
// @Failure 500 {object} map[string]string "Delivery failed and was not archived"
// @Router /webhooks/refunds/create [post]
func (h *Handler) HandleRefundCreate(c *fiber.Ctx) error {
	return h.handle(c, TopicRefundCreate)
}

func (h *Handler) handle(c *fiber.Ctx, topic string) error {
	l := logger.WithRayID(h.service.logger, c)

	if header := c.Get(HeaderTopic); header != "" && header != topic {
		l.Warn("Webhook topic header does not match route", zap.String("header", header), zap.String("route", topic))
	}

	// The body buffer is reused by fasthttp after the handler returns.
	payload := append([]byte(nil), c.Body()...)

	report, err := h.service.Ingest(c.UserContext(), Delivery{
		Shop:      c.Get(HeaderShopDomain),
		Topic:     topic,
		WebhookID: c.Get(HeaderWebhookID),
		Payload:   payload,
	})
	if err != nil {
		l.Error("Webhook ingestion failed", zap.String("topic", topic), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}
