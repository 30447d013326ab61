package bootstrap

import (
	"context"
	"log"

	"mealbox-be/internal/config"
	"mealbox-be/internal/controller"
	"mealbox-be/internal/handler"
	"mealbox-be/internal/pkg/logger"
	"mealbox-be/internal/pkg/mailer"
	"mealbox-be/internal/pkg/metrics"
	"mealbox-be/internal/repository/memory"
	"mealbox-be/internal/repository/unitofwork"
	"mealbox-be/internal/service"
	"mealbox-be/internal/websocket"
	adminEvents "mealbox-be/pkg/admin/events"
	"mealbox-be/pkg/admin/orders"
	"mealbox-be/pkg/delivery"
	"mealbox-be/pkg/kafka"
	pktNats "mealbox-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	OrderController      controller.IOrderController
	AdminOrderController controller.IAdminOrderController
	RiderController      controller.IRiderController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Dashboard feed
	DashboardHandler *handler.DashboardHandler
	WebSocketHub     *websocket.Hub

	Metrics *metrics.PrometheusRecorder
	Logger  logger.ILogger

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	recorder := metrics.NewPrometheusRecorder()

	schedule, err := cfg.Operations.DeliverySchedule()
	if err != nil {
		log.Fatalf("[FATAL] Invalid delivery schedule: %v", err)
	}
	engine := delivery.NewEngine(schedule)
	statusCache := memory.NewStatusCache(cfg.Operations.StatusCacheTTL)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		sysLogger,
	)

	c := &Container{Metrics: recorder, Logger: sysLogger}

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	sinks := []adminEvents.Sink{service.NewFeedSink(pubSub)}

	// 3. Infrastructure
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			sinks = append(sinks, natsPub)
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	if brokers := kafka.ParseBrokers(cfg.Kafka.Brokers); len(brokers) > 0 {
		producer, err := kafka.NewProducer(kafka.Config{
			Brokers:  brokers,
			Topic:    cfg.Kafka.Topic,
			Username: cfg.Kafka.Username,
			Password: cfg.Kafka.Password,
		})
		if err != nil {
			log.Printf("[WARN] Failed to create Kafka producer: %v", err)
		} else {
			sinks = append(sinks, producer)
			c.closers = append(c.closers, func() { _ = producer.Close() })
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	feedLogger := logger.NewIsolatedLogger(cfg.App.FeedLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, feedLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, service.DashboardTopic, c.WebSocketHub, feedLogger)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	eventPublisher := adminEvents.NewBusPublisher(sysLogger, sinks...)
	manager := orders.NewManager(sysLogger, cfg.Operations.UndoWindow)

	// 4. Services
	statusService := service.NewOrderStatusService(uowFactory, engine, statusCache, recorder, sysLogger)
	customerService := service.NewCustomerService(uowFactory, engine, statusCache, eventPublisher, emailService, recorder, sysLogger)
	adminOrderService := service.NewAdminOrderService(uowFactory, manager, statusCache, eventPublisher, emailService, recorder, sysLogger)
	riderService := service.NewRiderService(uowFactory, manager, statusCache, eventPublisher, recorder, sysLogger)

	// 5. Controllers
	c.OrderController = controller.NewOrderController(statusService, customerService, cfg.App.JwtSecret)
	c.AdminOrderController = controller.NewAdminOrderController(adminOrderService, cfg.App.JwtSecret)
	c.RiderController = controller.NewRiderController(riderService, cfg.App.JwtSecret)
	c.DashboardHandler = handler.NewDashboardHandler(c.WebSocketHub, cfg.App.JwtSecret, feedLogger)

	return c
}

// Start runs the hub and the feed consumer until ctx is done.
func (c *Container) Start(ctx context.Context) {
	go c.WebSocketHub.Run(ctx)
	go func() {
		if err := c.ConsumerService.Consume(ctx); err != nil {
			c.Logger.Error("BOOTSTRAP", "Feed consumer stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}
