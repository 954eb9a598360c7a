// Package exec runs external tools: text layers, rasterizers, optical
// recognition and entity models that live outside the process.
package exec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	osexec "os/exec"
	"strings"
	"time"
)

// Runner lets external commands be stubbed in tests.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

// Ensure CommandRunner implements Runner at compile time.
var _ Runner = (*CommandRunner)(nil)

// CommandRunner runs commands with os/exec and logs every invocation.
type CommandRunner struct {
	Logger *slog.Logger
}

// NewCommandRunner creates a CommandRunner logging to logger.
func NewCommandRunner(logger *slog.Logger) *CommandRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandRunner{Logger: logger}
}

// Run executes name with args, feeding stdin when non-nil.
func (r *CommandRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := osexec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	err := cmd.Run()
	dur := time.Since(start)

	if err != nil {
		r.Logger.Error("exec failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10), // cap at 8KB
		)
	} else {
		r.Logger.Debug("exec ok",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.Len(),
			"stderr_bytes", errb.Len(),
		)
	}

	return out.Bytes(), errb.Bytes(), err
}

// IsNotFound reports whether err means the command binary is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, osexec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// WithTempFile writes data to a temporary file named after pattern and
// calls fn with its path. The file is removed when fn returns.
func WithTempFile(data []byte, pattern string, fn func(path string) error) error {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return err
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return fn(path)
}

// StderrMessage returns a short single-line summary of stderr output.
func StderrMessage(stderr []byte) string {
	s := strings.TrimSpace(string(stderr))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return truncate(s, 512)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
