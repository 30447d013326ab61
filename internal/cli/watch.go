package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"mealbox-be/pkg/events"
	pktNats "mealbox-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/nats-io/nats.go/jetstream"
)

// EventSource is the part of the NATS subscriber watch needs.
type EventSource interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) (jetstream.ConsumeContext, error)
	Close()
}

type WatchCmd struct {
	Type string `help:"Only show this event type, e.g. ORDERS_CONFIRMED." default:""`
}

func (c *WatchCmd) Run(ctx *Context) error {
	if ctx.NatsURL == "" {
		return fmt.Errorf("NATS_URL is not set")
	}
	src, err := ctx.Subscribe(ctx.NatsURL)
	if err != nil {
		return err
	}
	defer src.Close()

	subject := pktNats.SubjectPrefix + ">"
	if c.Type != "" {
		subject = pktNats.Subject(c.Type)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cc, err := src.Subscribe(runCtx, subject, "", func(_ context.Context, e events.Event) error {
		fmt.Fprintln(ctx.Out, formatEvent(e))
		return nil
	})
	if err != nil {
		return err
	}
	defer cc.Stop()

	fmt.Fprintf(ctx.Out, "Watching %s (Ctrl-C to stop)\n", subject)
	<-runCtx.Done()
	return nil
}

var eventColors = map[string]*color.Color{
	events.TypeOrdersConfirmed:       color.New(color.FgGreen),
	events.TypeDeliveryAdvanced:      color.New(color.FgCyan),
	events.TypeOrderCancelled:        color.New(color.FgRed),
	events.TypeSubscriptionCancelled: color.New(color.FgRed),
	events.TypeWorkflowActionUndone:  color.New(color.FgYellow),
}

// formatEvent renders one line: time, type, then the payload sorted by key.
func formatEvent(e events.Event) string {
	c, ok := eventColors[e.EventType()]
	if !ok {
		c = color.New(color.Reset)
	}
	payload := e.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return fmt.Sprintf("%s %s %s",
		e.Timestamp().Local().Format("15:04:05"),
		c.Sprint(e.EventType()),
		strings.Join(parts, " "))
}
