package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovision/stress-map-service/internal/domain/events"
	"github.com/agrovision/stress-map-service/internal/domain/model"
	"github.com/agrovision/stress-map-service/internal/infrastructure/processors"
	"github.com/agrovision/stress-map-service/internal/infrastructure/storage"
	"github.com/agrovision/stress-map-service/pkg/config"
	"github.com/agrovision/stress-map-service/pkg/errors"
)

type capturingPublisher struct {
	mu        sync.Mutex
	published [][]byte
	failWith  error
}

func (p *capturingPublisher) Publish(ctx context.Context, topic string, data []byte, attributes map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failWith != nil {
		return p.failWith
	}
	p.published = append(p.published, data)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) publishedEvents(t *testing.T) []events.JobCompletedEvent {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.JobCompletedEvent, 0, len(p.published))
	for _, data := range p.published {
		var ev events.JobCompletedEvent
		require.NoError(t, json.Unmarshal(data, &ev))
		out = append(out, ev)
	}
	return out
}

type orchestratorFixture struct {
	orchestrator  *JobOrchestrator
	storeDir      string
	workspaceRoot string
	markerPath    string
	publisher     *capturingPublisher
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "processor.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

// newFixture wires an orchestrator around a directory-backed store and a fake
// processor script. The script records each invocation in a marker file so
// tests can assert the processor did or did not run.
func newFixture(t *testing.T, scriptBody string) *orchestratorFixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake processor scripts require a POSIX shell")
	}

	storeDir := t.TempDir()
	workspaceRoot := t.TempDir()
	scriptDir := t.TempDir()
	markerPath := filepath.Join(scriptDir, "invocations")

	script := writeScript(t, scriptDir, fmt.Sprintf("echo run >> %q\n%s", markerPath, scriptBody))

	cfg := &config.Config{
		Env:           config.EnvLocal,
		WorkspaceRoot: workspaceRoot,
		Processor: config.ProcessorConfig{
			BinaryPath:     script,
			LocalDataDir:   filepath.Join(scriptDir, "local_test_data"),
			LocalOutputDir: filepath.Join(scriptDir, "local_outputs"),
		},
	}

	logger := discardLogger()
	publisher := &capturingPublisher{}
	orchestrator := NewJobOrchestrator(
		logger,
		cfg,
		storage.NewLocalStore(logger, storeDir),
		processors.NewStressMapProcessor(logger, script),
		publisher,
		events.NewJSONEventSerializer(),
	)

	return &orchestratorFixture{
		orchestrator:  orchestrator,
		storeDir:      storeDir,
		workspaceRoot: workspaceRoot,
		markerPath:    markerPath,
		publisher:     publisher,
	}
}

func (f *orchestratorFixture) seedInput(t *testing.T, key string) {
	t.Helper()
	path := filepath.Join(f.storeDir, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("pixels-"+key), 0o644))
}

func (f *orchestratorFixture) processorInvocations(t *testing.T) int {
	t.Helper()
	data, err := os.ReadFile(f.markerPath)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	count := 0
	for _, b := range data {
		if b == '\n' {
			count++
		}
	}
	return count
}

func (f *orchestratorFixture) assertNoWorkspaceLeft(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.workspaceRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace directory left behind")
}

func TestGenerateStressMap_Success(t *testing.T) {
	f := newFixture(t, `cp "$1" "$3"`)
	f.seedInput(t, "rgb/ok.png")
	f.seedInput(t, "nir/ok.png")

	job, err := model.NewJob("rgb/ok.png", "nir/ok.png")
	require.NoError(t, err)

	url, err := f.orchestrator.GenerateStressMap(context.Background(), job)
	require.NoError(t, err)
	assert.Contains(t, url, job.OutputObjectKey())

	// Output object published under the derived key.
	_, err = os.Stat(filepath.Join(f.storeDir, "outputs", job.OutputFileName()))
	require.NoError(t, err)

	assert.Equal(t, 1, f.processorInvocations(t))
	f.assertNoWorkspaceLeft(t)

	published := f.publisher.publishedEvents(t)
	require.Len(t, published, 1)
	assert.True(t, published[0].Success)
	assert.Equal(t, job.ID, published[0].JobID)
	assert.Equal(t, job.OutputObjectKey(), published[0].OutputKey)
}

func TestGenerateStressMap_DownloadFailureSkipsProcessor(t *testing.T) {
	f := newFixture(t, `cp "$1" "$3"`)
	f.seedInput(t, "rgb/ok.png")
	// nir input deliberately missing

	job, err := model.NewJob("rgb/ok.png", "nir/missing.png")
	require.NoError(t, err)

	_, err = f.orchestrator.GenerateStressMap(context.Background(), job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeStorage))

	assert.Equal(t, 0, f.processorInvocations(t))

	// No output object created.
	_, statErr := os.Stat(filepath.Join(f.storeDir, "outputs"))
	assert.True(t, os.IsNotExist(statErr))

	f.assertNoWorkspaceLeft(t)

	published := f.publisher.publishedEvents(t)
	require.Len(t, published, 1)
	assert.False(t, published[0].Success)
	assert.NotEmpty(t, published[0].FailureReason)
}

func TestGenerateStressMap_ProcessorFailureSkipsUpload(t *testing.T) {
	f := newFixture(t, `echo "bad input" >&2; exit 1`)
	f.seedInput(t, "rgb/ok.png")
	f.seedInput(t, "nir/ok.png")

	job, err := model.NewJob("rgb/ok.png", "nir/ok.png")
	require.NoError(t, err)

	_, err = f.orchestrator.GenerateStressMap(context.Background(), job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeProcessing))
	assert.Contains(t, err.Error(), "bad input")

	_, statErr := os.Stat(filepath.Join(f.storeDir, "outputs"))
	assert.True(t, os.IsNotExist(statErr))

	f.assertNoWorkspaceLeft(t)
}

func TestGenerateStressMap_MissingOutputFailsUpload(t *testing.T) {
	// Processor exits 0 but writes nothing; the upload step fails naturally.
	f := newFixture(t, `exit 0`)
	f.seedInput(t, "rgb/ok.png")
	f.seedInput(t, "nir/ok.png")

	job, err := model.NewJob("rgb/ok.png", "nir/ok.png")
	require.NoError(t, err)

	_, err = f.orchestrator.GenerateStressMap(context.Background(), job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeStorage))

	f.assertNoWorkspaceLeft(t)
}

func TestGenerateStressMap_PublishFailureDoesNotFailJob(t *testing.T) {
	f := newFixture(t, `cp "$1" "$3"`)
	f.seedInput(t, "rgb/ok.png")
	f.seedInput(t, "nir/ok.png")
	f.publisher.failWith = errors.NewMessagingError("topic unavailable")

	job, err := model.NewJob("rgb/ok.png", "nir/ok.png")
	require.NoError(t, err)

	_, err = f.orchestrator.GenerateStressMap(context.Background(), job)
	require.NoError(t, err)
}

func TestGenerateStressMap_ConcurrentJobsProduceDistinctOutputs(t *testing.T) {
	f := newFixture(t, `cp "$1" "$3"`)
	f.seedInput(t, "rgb/ok.png")
	f.seedInput(t, "nir/ok.png")

	const n = 8
	var wg sync.WaitGroup
	jobErrs := make([]error, n)

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			job, err := model.NewJob("rgb/ok.png", "nir/ok.png")
			if err != nil {
				jobErrs[i] = err
				return
			}
			_, jobErrs[i] = f.orchestrator.GenerateStressMap(context.Background(), job)
		}(i)
	}
	wg.Wait()

	for i, err := range jobErrs {
		require.NoError(t, err, "job %d", i)
	}

	entries, err := os.ReadDir(filepath.Join(f.storeDir, "outputs"))
	require.NoError(t, err)
	assert.Len(t, entries, n)

	f.assertNoWorkspaceLeft(t)
}

func TestProcessLocalImages_MissingTestFiles(t *testing.T) {
	f := newFixture(t, `cp "$1" "$3"`)

	_, err := f.orchestrator.ProcessLocalImages(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeNotFound))
}

func TestProcessLocalImages_Success(t *testing.T) {
	f := newFixture(t, `cp "$1" "$3"`)

	dataDir := f.orchestrator.config.Processor.LocalDataDir
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "test_rgb.jpg"), []byte("rgb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "test_nir.jpg"), []byte("nir"), 0o644))

	outputPath, err := f.orchestrator.ProcessLocalImages(context.Background())
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(outputPath), "local_map_")

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("rgb"), data)
}
