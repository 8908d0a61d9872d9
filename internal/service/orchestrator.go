package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/agrovision/stress-map-service/internal/domain/events"
	"github.com/agrovision/stress-map-service/internal/domain/model"
	"github.com/agrovision/stress-map-service/internal/domain/port"
	"github.com/agrovision/stress-map-service/internal/infrastructure/processors"
	"github.com/agrovision/stress-map-service/pkg/config"
	"github.com/agrovision/stress-map-service/pkg/errors"
)

const (
	localRGBFileName = "input_rgb.png"
	localNIRFileName = "input_nir.png"

	stressMapContentType = "image/png"
)

// JobOrchestrator runs one stress-map job end to end: workspace, input
// downloads, processor invocation, output publication. The workspace is
// released on every exit path.
type JobOrchestrator struct {
	logger          *slog.Logger
	config          *config.Config
	store           port.ObjectStore
	processor       *processors.StressMapProcessor
	publisher       port.EventPublisher
	eventSerializer events.EventSerializer
}

func NewJobOrchestrator(
	logger *slog.Logger,
	cfg *config.Config,
	store port.ObjectStore,
	processor *processors.StressMapProcessor,
	publisher port.EventPublisher,
	eventSerializer events.EventSerializer,
) *JobOrchestrator {
	return &JobOrchestrator{
		logger:          logger,
		config:          cfg,
		store:           store,
		processor:       processor,
		publisher:       publisher,
		eventSerializer: eventSerializer,
	}
}

// GenerateStressMap downloads the job's input images, runs the stress-map
// executable over them, uploads the result and returns its public URL.
func (o *JobOrchestrator) GenerateStressMap(ctx context.Context, job *model.Job) (outputURL string, err error) {
	o.logger.Info("Starting stress-map job",
		"job_id", job.ID,
		"rgb_image_key", job.RGBImageKey,
		"nir_image_key", job.NIRImageKey,
	)

	workspace, err := model.NewWorkspace(o.config.WorkspaceRoot, job.ID)
	if err != nil {
		err = errors.WrapInternalError(err, "failed to create job workspace").
			WithContext("job_id", job.ID)
		o.publishFailureEvent(ctx, job, err)
		return "", err
	}
	defer func() {
		if removeErr := workspace.Remove(); removeErr != nil {
			o.logger.Warn("Failed to clean up workspace",
				"job_id", job.ID,
				"error", removeErr,
			)
		}
	}()

	rgbPath := workspace.Join(localRGBFileName)
	nirPath := workspace.Join(localNIRFileName)

	if err = o.downloadInputs(ctx, job, rgbPath, nirPath); err != nil {
		o.publishFailureEvent(ctx, job, err)
		return "", err
	}

	outputPath := workspace.Join(job.OutputFileName())

	if _, err = o.processor.Generate(rgbPath, nirPath, outputPath); err != nil {
		o.publishFailureEvent(ctx, job, err)
		return "", err
	}

	outputKey := job.OutputObjectKey()
	if err = o.store.Upload(ctx, outputPath, outputKey, stressMapContentType); err != nil {
		o.publishFailureEvent(ctx, job, err)
		return "", err
	}

	outputURL = o.store.PublicURL(outputKey)

	o.publishSuccessEvent(ctx, job, outputKey, outputURL)

	o.logger.Info("Stress-map job completed successfully",
		"job_id", job.ID,
		"output_key", outputKey,
	)

	return outputURL, nil
}

// downloadInputs fetches both input objects into the workspace. Either
// failure aborts the job before the processor runs.
func (o *JobOrchestrator) downloadInputs(ctx context.Context, job *model.Job, rgbPath, nirPath string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return o.store.Download(gctx, job.RGBImageKey, rgbPath)
	})
	g.Go(func() error {
		return o.store.Download(gctx, job.NIRImageKey, nirPath)
	})

	if err := g.Wait(); err != nil {
		return errors.WrapStorageError(err, "failed to download input images").
			WithContext("job_id", job.ID)
	}

	return nil
}

// ProcessLocalImages runs the processor over the fixed test images in the
// local data directory, bypassing the object store entirely.
func (o *JobOrchestrator) ProcessLocalImages(ctx context.Context) (string, error) {
	rgbPath, err := filepath.Abs(filepath.Join(o.config.Processor.LocalDataDir, "test_rgb.jpg"))
	if err != nil {
		return "", errors.WrapInternalError(err, "failed to resolve test data path")
	}
	nirPath, err := filepath.Abs(filepath.Join(o.config.Processor.LocalDataDir, "test_nir.jpg"))
	if err != nil {
		return "", errors.WrapInternalError(err, "failed to resolve test data path")
	}

	if !fileExists(rgbPath) || !fileExists(nirPath) {
		return "", errors.NewNotFoundError("test files").
			WithContext("data_dir", o.config.Processor.LocalDataDir)
	}

	if err := os.MkdirAll(o.config.Processor.LocalOutputDir, 0o755); err != nil {
		return "", errors.WrapInternalError(err, "failed to create local output directory")
	}

	jobID := model.NewJobID()
	outputPath, err := filepath.Abs(filepath.Join(o.config.Processor.LocalOutputDir, "local_map_"+jobID+".png"))
	if err != nil {
		return "", errors.WrapInternalError(err, "failed to resolve output path")
	}

	o.logger.Info("Starting local processing job", "job_id", jobID)

	if _, err := o.processor.Generate(rgbPath, nirPath, outputPath); err != nil {
		return "", err
	}

	o.logger.Info("Local processing job completed", "job_id", jobID, "output", outputPath)
	return outputPath, nil
}

func (o *JobOrchestrator) publishSuccessEvent(ctx context.Context, job *model.Job, outputKey, outputURL string) {
	event := events.NewJobCompletedEvent(job.ID, job.RGBImageKey, job.NIRImageKey).
		WithSuccess(outputKey, outputURL)
	o.publishEvent(ctx, event)
}

func (o *JobOrchestrator) publishFailureEvent(ctx context.Context, job *model.Job, jobErr error) {
	event := events.NewJobCompletedEvent(job.ID, job.RGBImageKey, job.NIRImageKey).
		WithFailure(jobErr.Error())
	o.publishEvent(ctx, event)
}

// publishEvent is best-effort: a publish failure is logged and never fails
// the job.
func (o *JobOrchestrator) publishEvent(ctx context.Context, event *events.JobCompletedEvent) {
	data, err := o.eventSerializer.Serialize(event)
	if err != nil {
		o.logger.Error("Failed to serialize job event",
			"job_id", event.JobID,
			"error", err,
		)
		return
	}

	attributes := map[string]string{
		"event_type": string(event.EventType),
		"job_id":     event.JobID,
	}

	if err := o.publisher.Publish(ctx, o.config.JobEventsTopicID, data, attributes); err != nil {
		o.logger.Error("Failed to publish job event",
			"job_id", event.JobID,
			"error", err,
		)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
