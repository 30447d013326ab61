// Package cli implements opsctl, the operator's terminal for the bulk
// workflow: the same transitions and undo as the admin console, plus a
// live tail of workflow events.
package cli

import (
	"io"

	"mealbox-be/internal/service"
	pktNats "mealbox-be/pkg/nats"
)

// Context is shared by every command.
type Context struct {
	Orders  service.IAdminOrderService
	Actor   string
	Out     io.Writer
	NatsURL string

	// Subscribe opens a NATS subscriber; tests replace it.
	Subscribe func(url string) (EventSource, error)
}

func NewContext(orders service.IAdminOrderService, actor, natsURL string, out io.Writer) *Context {
	return &Context{
		Orders:  orders,
		Actor:   actor,
		Out:     out,
		NatsURL: natsURL,
		Subscribe: func(url string) (EventSource, error) {
			sub, err := pktNats.NewSubscriber(url)
			if err != nil {
				return nil, err
			}
			return sub, nil
		},
	}
}
