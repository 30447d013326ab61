package controller

import (
	"mealbox-be/internal/dto"
	"mealbox-be/internal/pkg/serverutils"
	"mealbox-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRiderController interface {
	RegisterRoutes(r fiber.Router)
	AdvanceDelivery(ctx *fiber.Ctx) error
	UndoLast(ctx *fiber.Ctx) error
}

type riderController struct {
	service   service.IRiderService
	jwtSecret string
}

func NewRiderController(service service.IRiderService, jwtSecret string) IRiderController {
	return &riderController{service: service, jwtSecret: jwtSecret}
}

// Kitchen staff share these routes to move rows into the kitchen.
func (c *riderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rider")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret, serverutils.RoleRider, serverutils.RoleKitchen, serverutils.RoleAdmin))
	h.Post("/deliveries/:id/advance", c.AdvanceDelivery)
	h.Post("/undo", c.UndoLast)
}

func (c *riderController) AdvanceDelivery(ctx *fiber.Ctx) error {
	scheduleId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid delivery id")
	}

	var req dto.AdvanceDeliveryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AdvanceDelivery(ctx.Context(), scheduleId, req, serverutils.ActorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Description, res))
}

func (c *riderController) UndoLast(ctx *fiber.Ctx) error {
	res, err := c.service.UndoLast(ctx.Context(), serverutils.ActorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Description, res))
}
