package processors

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/agrovision/stress-map-service/pkg/errors"
)

// StressMapProcessor invokes the pre-built stress-map executable. The program
// takes exactly three positional arguments: RGB input, NIR input, output path.
// Its internal algorithm is opaque to this service.
type StressMapProcessor struct {
	logger     *slog.Logger
	binaryPath string
}

func NewStressMapProcessor(logger *slog.Logger, binaryPath string) *StressMapProcessor {
	processor := &StressMapProcessor{
		logger:     logger,
		binaryPath: binaryPath,
	}

	// Verify binary at initialization
	if err := processor.VerifyBinary(); err != nil {
		logger.Error("stress-map binary verification failed", "error", err)
	}

	return processor
}

// VerifyBinary checks that the configured executable exists, either as a
// filesystem path or in the system PATH.
func (p *StressMapProcessor) VerifyBinary() error {
	if filepath.IsAbs(p.binaryPath) || filepath.Base(p.binaryPath) != p.binaryPath {
		if _, err := os.Stat(p.binaryPath); err != nil {
			return errors.NewConfigurationError("executable not found").
				WithContext("binary", p.binaryPath)
		}
		return nil
	}
	if _, err := exec.LookPath(p.binaryPath); err != nil {
		return errors.NewConfigurationError("executable not found in PATH").
			WithContext("binary", p.binaryPath)
	}
	return nil
}

// Generate runs the executable over the two inputs and blocks until it
// terminates. The child is intentionally not tied to the request context:
// once started it runs to completion even if the caller goes away, and no
// timeout is applied.
func (p *StressMapProcessor) Generate(rgbPath, nirPath, outputPath string) (*CommandResult, error) {
	cmd := exec.Command(p.binaryPath, rgbPath, nirPath, outputPath)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.logger.Debug("executing stress-map command",
		"binary", p.binaryPath,
		"rgb_input", rgbPath,
		"nir_input", nirPath,
		"output", outputPath,
	)

	err := cmd.Run()
	result := p.createResult(stdout, stderr, err)

	if err != nil {
		p.logger.Error("stress-map command failed",
			"binary", p.binaryPath,
			"exit_code", result.ExitCode,
			"stderr", result.Stderr,
		)
		return result, errors.WrapProcessingError(err, fmt.Sprintf("stress map generation failed: %s", result.Diagnostic())).
			WithContext("binary", p.binaryPath).
			WithContext("exit_code", result.ExitCode)
	}

	return result, nil
}

func (p *StressMapProcessor) createResult(stdout, stderr bytes.Buffer, err error) *CommandResult {
	result := &CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	} else if err == nil {
		result.ExitCode = 0
	} else {
		result.ExitCode = -1
	}

	return result
}
