package bootstrap

import (
	"context"
	"log"

	"noet-be/internal/config"
	"noet-be/internal/controller"
	"noet-be/internal/entity"
	"noet-be/internal/handler"
	"noet-be/internal/pkg/logger"
	"noet-be/internal/pkg/metrics"
	"noet-be/internal/repository/unitofwork"
	"noet-be/internal/service"
	"noet-be/internal/websocket"

	pktNats "noet-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Logger  logger.ILogger
	Metrics *metrics.Metrics

	// Controllers
	NoteController        controller.INoteController
	AttachmentController  controller.IAttachmentController
	CollectionControllers []controller.ICollectionController
	SystemController      controller.ISystemController

	// Services used outside HTTP (noetctl, tests)
	NoteService       service.INoteService
	CollectionService service.ICollectionService
	StorageService    service.IStorageService

	// Background services, started by Start
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	ChangeFeedHandler *handler.ChangeFeedHandler

	closers []func()
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(cfg.Storage.NotesBasePath)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == config.EnvProduction)
	appMetrics := metrics.NewMetrics()

	c := &Container{
		Logger:  sysLogger,
		Metrics: appMetrics,
	}

	// 2. Event bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	// 3. Optional infrastructure
	var sink service.EventSink
	if cfg.Infra.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Infra.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			sink = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var rdb *redis.Client
	if cfg.Infra.RedisURL != "" {
		rdb = connectRedis(cfg.Infra.RedisURL)
		if rdb != nil {
			c.closers = append(c.closers, func() { rdb.Close() })
		}
	}

	// 4. Change feed
	wsLogger := logger.NewIsolatedLogger(cfg.App.ChangeLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, cfg.Infra.ClusterChannel, wsLogger)
	c.ChangeFeedHandler = handler.NewChangeFeedHandler(c.WebSocketHub, wsLogger)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Infra.ChangesTopic, pubSub, sysLogger, appMetrics)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Infra.ChangesTopic, c.WebSocketHub, sink, sysLogger)

	c.NoteService = service.NewNoteService(uowFactory, publisherService, appMetrics)
	c.CollectionService = service.NewCollectionService(uowFactory, publisherService, sysLogger, appMetrics, cfg.Storage.DeletePolicy)
	c.StorageService = service.NewStorageService(uowFactory, publisherService, sysLogger, cfg.Storage.SettingsFile)
	attachmentService := service.NewAttachmentService(uowFactory, publisherService, sysLogger, appMetrics, cfg.Limits.MaxUploadBytes)
	systemService := service.NewSystemService(cfg, sysLogger)

	if err := c.StorageService.LoadPersisted(context.Background()); err != nil {
		sysLogger.Warn("Bootstrap", "Ignoring unreadable storage settings", map[string]interface{}{
			"error": err.Error(),
			"file":  cfg.Storage.SettingsFile,
		})
	}

	// 6. Controllers
	c.NoteController = controller.NewNoteController(c.NoteService)
	c.AttachmentController = controller.NewAttachmentController(attachmentService)
	c.SystemController = controller.NewSystemController(systemService, c.StorageService)
	for _, kind := range entity.CollectionKinds {
		c.CollectionControllers = append(c.CollectionControllers, controller.NewCollectionController(c.CollectionService, kind))
	}

	return c
}

// Start runs the hub and the bus consumer until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	return c.ConsumerService.Consume(ctx)
}

// Close releases infrastructure in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Change feed stays local", err)
		rdb.Close()
		return nil
	}
	return rdb
}
