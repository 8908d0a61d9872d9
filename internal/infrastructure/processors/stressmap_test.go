package processors

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrovision/stress-map-service/pkg/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake processor scripts require a POSIX shell")
	}
}

func TestStressMapProcessor_Success(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	script := writeScript(t, dir, "processor.sh", `cp "$1" "$3"`)
	rgb := filepath.Join(dir, "rgb.png")
	nir := filepath.Join(dir, "nir.png")
	out := filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(rgb, []byte("rgb-bytes"), 0o644))
	require.NoError(t, os.WriteFile(nir, []byte("nir-bytes"), 0o644))

	p := NewStressMapProcessor(discardLogger(), script)

	result, err := p.Generate(rgb, nir, out)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, 0, result.ExitCode)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("rgb-bytes"), data)
}

func TestStressMapProcessor_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	script := writeScript(t, dir, "processor.sh", `echo "bad input" >&2; exit 1`)
	p := NewStressMapProcessor(discardLogger(), script)

	result, err := p.Generate("a.png", "b.png", "c.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeProcessing))
	assert.Contains(t, err.Error(), "bad input")

	require.NotNil(t, result)
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "bad input")
}

func TestStressMapProcessor_DiagnosticFallsBackToStdout(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	script := writeScript(t, dir, "processor.sh", `echo "only on stdout"; exit 2`)
	p := NewStressMapProcessor(discardLogger(), script)

	result, err := p.Generate("a.png", "b.png", "c.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only on stdout")
	assert.Equal(t, 2, result.ExitCode)
	assert.Empty(t, result.Stderr)
}

func TestStressMapProcessor_MissingBinary(t *testing.T) {
	p := NewStressMapProcessor(discardLogger(), filepath.Join(t.TempDir(), "does-not-exist"))

	require.Error(t, p.VerifyBinary())

	_, err := p.Generate("a.png", "b.png", "c.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeProcessing))
}

func TestCommandResult_Diagnostic(t *testing.T) {
	r := &CommandResult{Stderr: " stderr text \n", Stdout: "stdout text"}
	assert.Equal(t, "stderr text", r.Diagnostic())

	r = &CommandResult{Stdout: "stdout text\n"}
	assert.Equal(t, "stdout text", r.Diagnostic())

	r = &CommandResult{ExitCode: 7}
	assert.Equal(t, "command failed with exit code 7", r.Diagnostic())
}
