package controller

import (
	"time"

	"mealbox-be/internal/dto"
	"mealbox-be/internal/pkg/serverutils"
	"mealbox-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IOrderController interface {
	RegisterRoutes(r fiber.Router)
	GetStatus(ctx *fiber.Ctx) error
	GetCancellationEligibility(ctx *fiber.Ctx) error
	CancelSubscription(ctx *fiber.Ctx) error
}

type orderController struct {
	statusService   service.IOrderStatusService
	customerService service.ICustomerService
	jwtSecret       string
	now             func() time.Time
}

func NewOrderController(statusService service.IOrderStatusService, customerService service.ICustomerService, jwtSecret string) IOrderController {
	return &orderController{
		statusService:   statusService,
		customerService: customerService,
		jwtSecret:       jwtSecret,
		now:             time.Now,
	}
}

func (c *orderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/orders")
	h.Use(serverutils.JwtMiddleware(c.jwtSecret, serverutils.RoleCustomer))
	h.Get("/:subscriptionId/status", c.GetStatus)
	h.Get("/:subscriptionId/cancellation", c.GetCancellationEligibility)
	h.Post("/:subscriptionId/cancel", c.CancelSubscription)
}

func subscriptionParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("subscriptionId"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid subscription id")
	}
	return id, nil
}

func (c *orderController) GetStatus(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	subscriptionId, err := subscriptionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.statusService.DeriveStatus(ctx.Context(), userId, subscriptionId, c.now())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Order status", res))
}

func (c *orderController) GetCancellationEligibility(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	subscriptionId, err := subscriptionParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.statusService.CanCustomerCancel(ctx.Context(), userId, subscriptionId, c.now())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Cancellation eligibility", res))
}

func (c *orderController) CancelSubscription(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	subscriptionId, err := subscriptionParam(ctx)
	if err != nil {
		return err
	}

	var req dto.CustomerCancelRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.customerService.CancelSubscription(ctx.Context(), userId, subscriptionId, req, c.now())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription cancelled", res))
}
