package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const maxLoggedStderr = 8 << 10

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.logger
	if logger == nil {
		logger = slog.Default()
	}
	var out, errb bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &errb

	start := time.Now()
	err := cmd.Run()
	attrs := []any{"cmd", name, "args", strings.Join(args, " "), "elapsed_ms", time.Since(start).Milliseconds()}

	switch {
	case err == nil:
		logger.Debug("ocr.exec.ok", append(attrs, "stdout_bytes", out.Len(), "stderr_bytes", errb.Len())...)
	case errors.Is(err, exec.ErrNotFound):
		logger.Error("ocr.exec.not_found", append(attrs, "error", err)...)
		err = fmt.Errorf("%s is not installed or not on PATH: %w", name, err)
	case ctx.Err() != nil:
		logger.Error("ocr.exec.timeout", append(attrs, "error", ctx.Err())...)
		err = fmt.Errorf("%s interrupted: %w", name, ctx.Err())
	default:
		logger.Error("ocr.exec.failed", append(attrs, "error", err, "stderr", truncate(errb.String(), maxLoggedStderr))...)
	}
	return out.Bytes(), errb.Bytes(), err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
