package container

import (
	"context"
	"log/slog"

	"cloud.google.com/go/pubsub"
	gcs "cloud.google.com/go/storage"

	"github.com/agrovision/stress-map-service/internal/domain/events"
	"github.com/agrovision/stress-map-service/internal/domain/port"
	"github.com/agrovision/stress-map-service/internal/handler"
	pubsubInfra "github.com/agrovision/stress-map-service/internal/infrastructure/events/pubsub"
	"github.com/agrovision/stress-map-service/internal/infrastructure/events/stdout"
	"github.com/agrovision/stress-map-service/internal/infrastructure/processors"
	"github.com/agrovision/stress-map-service/internal/infrastructure/storage"
	"github.com/agrovision/stress-map-service/internal/service"
	"github.com/agrovision/stress-map-service/pkg/config"
	"github.com/agrovision/stress-map-service/pkg/errors"
)

type Container struct {
	Config          *config.Config
	Logger          *slog.Logger
	GCSClient       *gcs.Client
	PubSubClient    *pubsub.Client
	Store           port.ObjectStore
	Publisher       port.EventPublisher
	EventSerializer events.EventSerializer
	Processor       *processors.StressMapProcessor
	Orchestrator    *service.JobOrchestrator
	Handler         *handler.Handler
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	logger.Info("Initializing container")

	cnt := &Container{
		Config: cfg,
		Logger: logger,
	}

	// Object store: GCS everywhere except LOCAL, which uses a plain directory.
	if cfg.Env == config.EnvLocal {
		cnt.Store = storage.NewLocalStore(logger, cfg.LocalStoreDir)
	} else {
		gcsClient, err := gcs.NewClient(ctx)
		if err != nil {
			logger.Error("Failed to create GCS client", "error", err)
			return nil, errors.WrapInternalError(err, "failed to create GCS client")
		}
		cnt.GCSClient = gcsClient
		cnt.Store = storage.NewGCSStore(logger, gcsClient, cfg.GCP.BucketName)
	}

	// Job result events: Pub/Sub when a topic is configured, stdout otherwise.
	if cfg.EventsEnabled() {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP.ProjectID)
		if err != nil {
			logger.Error("Failed to create Pub/Sub client", "error", err)
			return nil, errors.WrapInternalError(err, "failed to create pubsub client")
		}
		cnt.PubSubClient = pubsubClient
		cnt.Publisher = pubsubInfra.NewPublisher(pubsubClient, logger)
	} else {
		cnt.Publisher = stdout.NewPublisher(logger)
	}

	cnt.EventSerializer = events.NewJSONEventSerializer()
	cnt.Processor = processors.NewStressMapProcessor(logger, cfg.Processor.BinaryPath)
	cnt.Orchestrator = service.NewJobOrchestrator(
		logger,
		cfg,
		cnt.Store,
		cnt.Processor,
		cnt.Publisher,
		cnt.EventSerializer,
	)
	cnt.Handler = handler.NewHandler(logger, cnt.Orchestrator)

	logger.Info("Container initialized successfully")

	return cnt, nil
}

func (c *Container) Close() error {
	c.Logger.Info("Closing container resources")

	if c.PubSubClient != nil {
		if err := c.PubSubClient.Close(); err != nil {
			c.Logger.Error("Failed to close Pub/Sub client", "error", err)
			return err
		}
	}

	if c.GCSClient != nil {
		if err := c.GCSClient.Close(); err != nil {
			c.Logger.Error("Failed to close GCS client", "error", err)
			return err
		}
	}

	return nil
}
