package handler

import (
	"mealbox-be/internal/pkg/logger"
	"mealbox-be/internal/pkg/serverutils"
	"mealbox-be/internal/service"
	internalWS "mealbox-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// DashboardHandler upgrades staff connections to the live workflow feed.
type DashboardHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewDashboardHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *DashboardHandler {
	return &DashboardHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// audienceFor maps a staff role to the feed it watches. Customers have none.
func audienceFor(role string) (string, bool) {
	switch role {
	case serverutils.RoleAdmin:
		return service.AudienceAdmin, true
	case serverutils.RoleKitchen:
		return service.AudienceKitchen, true
	case serverutils.RoleRider:
		return service.AudienceRider, true
	}
	return "", false
}

// ServeWs handles websocket requests from the dashboards.
func (h *DashboardHandler) ServeWs(c *fiber.Ctx) error {
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')"))
	}

	claims, err := serverutils.ParseToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("DashboardFeed", "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, err.Error()))
	}
	audience, ok := audienceFor(claims.Role)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse(fiber.StatusForbidden, "Dashboard feed is for staff only"))
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("DashboardFeed", "Starting websocket session", map[string]interface{}{
				"user_id":  claims.UserId,
				"audience": audience,
			})
			internalWS.ServeWs(h.hub, conn, claims.UserId, audience)
			h.logger.Info("DashboardFeed", "Websocket session ended", map[string]interface{}{"user_id": claims.UserId})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *DashboardHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/dashboard/ws", h.ServeWs)
}
