package convert

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/ironsheep/quick-view-mcp/internal/failure"
)

// maxStderrLog bounds how much converter stderr is logged.
const maxStderrLog = 512

// DefaultTimeout bounds a single converter invocation.
const DefaultTimeout = 10 * time.Second

// Runner executes a converter program and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)
}

// ExecRunner runs converters as child processes.
type ExecRunner struct {
	Timeout time.Duration
	Logger  *log.Logger // receives converter stderr; nil discards it
}

// Run starts name with args, feeds stdin to it when non-nil, and returns stdout.
//
// A missing binary, a non-zero exit status, and a timeout are all
// KindConverterInvocation failures. Stderr is logged, never returned.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	// Converters may leave children holding the output pipes after a kill.
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	err := cmd.Run()
	if msg := strings.TrimSpace(stderr.String()); msg != "" && r.Logger != nil {
		if len(msg) > maxStderrLog {
			msg = msg[:maxStderrLog] + "..."
		}
		r.Logger.Printf("%s stderr: %s", name, msg)
	}
	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, failure.New(failure.KindConverterInvocation, "%s timed out after %s", name, timeout)
	case errors.Is(err, exec.ErrNotFound):
		return nil, failure.New(failure.KindConverterInvocation, "%s not found in PATH", name)
	case errors.As(err, &exitErr):
		return nil, failure.New(failure.KindConverterInvocation, "%s exited with status %d", name, exitErr.ExitCode())
	}
	return nil, failure.Wrap(failure.KindConverterInvocation, "run "+name, err)
}

// discard is the logger used when none is configured.
var discard = log.New(io.Discard, "", 0)
