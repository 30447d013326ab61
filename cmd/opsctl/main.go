package main

import (
	"os"

	"mealbox-be/internal/cli"
	"mealbox-be/internal/config"
	"mealbox-be/internal/pkg/logger"
	"mealbox-be/internal/pkg/mailer"
	"mealbox-be/internal/pkg/metrics"
	"mealbox-be/internal/repository/memory"
	"mealbox-be/internal/repository/unitofwork"
	"mealbox-be/internal/service"
	adminEvents "mealbox-be/pkg/admin/events"
	"mealbox-be/pkg/admin/orders"
	"mealbox-be/pkg/database"
	pktNats "mealbox-be/pkg/nats"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
)

type opsctlCLI struct {
	Actor   string `help:"Actor id recorded in the action log." env:"OPSCTL_ACTOR" required:""`
	Quiet   bool   `help:"Suppress service logs."`
	NoColor bool   `help:"Disable colored output." env:"NO_COLOR"`

	ConfirmAll cli.ConfirmAllCmd `cmd:"" name:"confirm-all" help:"Move every order for a date into the kitchen."`
	Cancel     cli.CancelCmd     `cmd:"" help:"Cancel one subscription's delivery."`
	Undo       cli.UndoCmd       `cmd:"" help:"Reverse your latest action, or a given one."`
	Actions    cli.ActionsCmd    `cmd:"" help:"List recorded workflow actions."`
	Deliveries cli.DeliveriesCmd `cmd:"" help:"Show the delivery sheet for a date."`
	Watch      cli.WatchCmd      `cmd:"" help:"Tail workflow events from NATS."`
}

var CLI opsctlCLI

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("opsctl"),
		kong.Description("Operator console for the meal delivery workflow"),
		kong.UsageOnError(),
	)
	color.NoColor = color.NoColor || CLI.NoColor

	cfg := config.Load()

	var sysLogger logger.ILogger = logger.NewNopLogger()
	if !CLI.Quiet {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	}
	defer sysLogger.Sync()

	var ordersService service.IAdminOrderService
	if kctx.Command() != "watch" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{Quiet: true, MaxOpenConns: 4})
		if err != nil {
			fail(err)
		}

		var sinks []adminEvents.Sink
		if cfg.App.NatsURL != "" {
			pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
			if err != nil {
				color.Yellow("NATS unavailable, events will not reach the dashboard: %v", err)
			} else {
				defer pub.Close()
				sinks = append(sinks, pub)
			}
		}

		ordersService = service.NewAdminOrderService(
			unitofwork.NewRepositoryFactory(db),
			orders.NewManager(sysLogger, cfg.Operations.UndoWindow),
			memory.NewStatusCache(0),
			adminEvents.NewBusPublisher(sysLogger, sinks...),
			mailer.NewEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password, cfg.SMTP.SenderName, sysLogger),
			metrics.Nop(),
			sysLogger,
		)
	}

	appCtx := cli.NewContext(ordersService, CLI.Actor, cfg.App.NatsURL, os.Stdout)
	if err := kctx.Run(appCtx); err != nil {
		fail(err)
	}
}

func fail(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
