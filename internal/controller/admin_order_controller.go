package controller

import (
	"strconv"

	"mealbox-be/internal/dto"
	"mealbox-be/internal/pkg/serverutils"
	"mealbox-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminOrderController interface {
	RegisterRoutes(r fiber.Router)
	ListDeliveries(ctx *fiber.Ctx) error
	ConfirmAll(ctx *fiber.Ctx) error
	CancelOrder(ctx *fiber.Ctx) error
	UndoLast(ctx *fiber.Ctx) error
	UndoAction(ctx *fiber.Ctx) error
	ListActions(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type adminOrderController struct {
	service   service.IAdminOrderService
	jwtSecret string
}

func NewAdminOrderController(service service.IAdminOrderService, jwtSecret string) IAdminOrderController {
	return &adminOrderController{service: service, jwtSecret: jwtSecret}
}

func (c *adminOrderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret, serverutils.RoleAdmin))

	// Delivery console
	h.Get("/orders/deliveries", c.ListDeliveries)
	h.Post("/orders/confirm-all", c.ConfirmAll)
	h.Post("/orders/cancel", c.CancelOrder)

	// Action log
	h.Get("/orders/actions", c.ListActions)
	h.Post("/orders/undo", c.UndoLast)
	h.Post("/orders/actions/:id/undo", c.UndoAction)

	// Logs
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
}

func (c *adminOrderController) ListDeliveries(ctx *fiber.Ctx) error {
	res, err := c.service.ListDeliveries(ctx.Context(), ctx.Query("date"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Deliveries", res))
}

func (c *adminOrderController) ConfirmAll(ctx *fiber.Ctx) error {
	var req dto.ConfirmAllRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ConfirmAllOrders(ctx.Context(), req, serverutils.ActorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Description, res))
}

func (c *adminOrderController) CancelOrder(ctx *fiber.Ctx) error {
	var req dto.CancelOrderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CancelOrder(ctx.Context(), req, serverutils.ActorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Description, res))
}

func (c *adminOrderController) UndoLast(ctx *fiber.Ctx) error {
	res, err := c.service.UndoLastAction(ctx.Context(), serverutils.ActorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Description, res))
}

func (c *adminOrderController) UndoAction(ctx *fiber.Ctx) error {
	actionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid action id")
	}

	res, err := c.service.UndoAction(ctx.Context(), actionId, serverutils.ActorID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Description, res))
}

// ListActions shows the caller's own log unless ?scope=all.
func (c *adminOrderController) ListActions(ctx *fiber.Ctx) error {
	limit, _ := strconv.Atoi(ctx.Query("limit", "20"))
	actorId := serverutils.ActorID(ctx)
	if ctx.Query("scope") == "all" {
		actorId = ""
	}

	res, err := c.service.ListActions(ctx.Context(), actorId, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Workflow actions", res))
}

func (c *adminOrderController) GetLogs(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	limit, _ := strconv.Atoi(ctx.Query("limit", "10"))

	logs, err := c.service.GetSystemLogs(ctx.Context(), page, limit, ctx.Query("level"), ctx.Query("module"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", logs))
}

func (c *adminOrderController) GetLogDetail(ctx *fiber.Ctx) error {
	// Log ids are content hashes, not UUIDs
	l, err := c.service.GetLogDetail(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", l))
}
