package cli

import (
	"context"
	"fmt"

	"mealbox-be/internal/dto"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

type ConfirmAllCmd struct {
	Date string `arg:"" help:"Delivery date (YYYY-MM-DD)."`
}

func (c *ConfirmAllCmd) Run(ctx *Context) error {
	res, err := ctx.Orders.ConfirmAllOrders(context.Background(), dto.ConfirmAllRequest{Date: c.Date}, ctx.Actor)
	if err != nil {
		return err
	}
	printTransition(ctx, res)
	return nil
}

type CancelCmd struct {
	SubscriptionID string `arg:"" name:"subscription-id" help:"Subscription to cancel."`
	Date           string `help:"Delivery date (YYYY-MM-DD)." required:""`
	Reason         string `help:"Reason shown to the customer." required:""`
}

func (c *CancelCmd) Run(ctx *Context) error {
	res, err := ctx.Orders.CancelOrder(context.Background(), dto.CancelOrderRequest{
		SubscriptionId: c.SubscriptionID,
		Reason:         c.Reason,
		Date:           c.Date,
	}, ctx.Actor)
	if err != nil {
		return err
	}
	printTransition(ctx, res)
	return nil
}

type UndoCmd struct {
	Action string `help:"Undo this action id instead of your latest one."`
}

func (c *UndoCmd) Run(ctx *Context) error {
	var (
		res *dto.UndoResponse
		err error
	)
	if c.Action == "" {
		res, err = ctx.Orders.UndoLastAction(context.Background(), ctx.Actor)
	} else {
		id, perr := uuid.Parse(c.Action)
		if perr != nil {
			return fmt.Errorf("invalid action id %q", c.Action)
		}
		res, err = ctx.Orders.UndoAction(context.Background(), id, ctx.Actor)
	}
	if err != nil {
		return err
	}
	green := color.New(color.FgGreen)
	green.Fprintln(ctx.Out, res.Description)
	fmt.Fprintf(ctx.Out, "  rows restored: %d, subscriptions restored: %d\n", res.RowsRestored, res.SubscriptionsRestored)
	return nil
}

type ActionsCmd struct {
	All   bool `help:"Show every actor's actions."`
	Limit int  `help:"Maximum entries." default:"20"`
}

func (c *ActionsCmd) Run(ctx *Context) error {
	actor := ctx.Actor
	if c.All {
		actor = ""
	}
	actions, err := ctx.Orders.ListActions(context.Background(), actor, c.Limit)
	if err != nil {
		return err
	}
	if len(actions) == 0 {
		fmt.Fprintln(ctx.Out, "No actions recorded")
		return nil
	}
	for _, a := range actions {
		printAction(ctx, a)
	}
	return nil
}

type DeliveriesCmd struct {
	Date string `arg:"" help:"Delivery date (YYYY-MM-DD)."`
}

func (c *DeliveriesCmd) Run(ctx *Context) error {
	list, err := ctx.Orders.ListDeliveries(context.Background(), c.Date)
	if err != nil {
		return err
	}
	bold := color.New(color.Bold)
	bold.Fprintf(ctx.Out, "%s: %d deliveries, %d awaiting confirmation\n", list.Date, list.Total, list.Confirmable)
	for _, r := range list.Rows {
		line := fmt.Sprintf("  %s  sub %s  x%d  %-16s %s", r.ScheduleId, r.SubscriptionId, r.Quantity, r.WorkflowLabel, r.LineStatus)
		if r.LineStatus == "cancelled" {
			color.New(color.Faint).Fprintln(ctx.Out, line)
			continue
		}
		fmt.Fprintln(ctx.Out, line)
	}
	return nil
}

func printTransition(ctx *Context, res *dto.TransitionResponse) {
	color.New(color.FgGreen).Fprintln(ctx.Out, res.Description)
	fmt.Fprintf(ctx.Out, "  action: %s\n", res.ActionId)
	fmt.Fprintf(ctx.Out, "  rows: %d, subscriptions: %d\n", res.RowsUpdated, res.SubscriptionsUpdated)
}

func printAction(ctx *Context, a *dto.WorkflowActionResponse) {
	status := color.New(color.Faint)
	if a.Undoable {
		status = color.New(color.FgYellow)
	}
	fmt.Fprintf(ctx.Out, "%s  %s  %-8s ", a.CreatedAt.Local().Format("2006-01-02 15:04"), a.Id, a.ActorId)
	status.Fprintf(ctx.Out, "%-10s", a.Status)
	fmt.Fprintf(ctx.Out, " %s\n", a.Description)
}
