// Package shell provides the subprocess executor adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor that mirrors process output into logger.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Run executes the invocation and blocks until the process exits.
//
// The process sees exactly inv.Env; an empty environment inherits the parent's.
// Output is streamed line by line to the logger (stdout as info, stderr as warnings)
// and copied verbatim to stdout and stderr.
func (e *Executor) Run(ctx context.Context, inv domain.Invocation, stdout, stderr io.Writer) error {
	cmd, err := e.command(ctx, inv)
	if err != nil {
		return err
	}

	outLog := &logWriter{emit: e.logger.Info}
	errLog := &logWriter{emit: e.logger.Warn}
	cmd.Stdout = io.MultiWriter(outLog, orDiscard(stdout))
	cmd.Stderr = io.MultiWriter(errLog, orDiscard(stderr))

	runErr := cmd.Run()
	outLog.Flush()
	errLog.Flush()

	if runErr != nil {
		return commandError(runErr, inv)
	}
	return nil
}

// Output executes the invocation and returns its standard output.
func (e *Executor) Output(ctx context.Context, inv domain.Invocation) ([]byte, error) {
	cmd, err := e.command(ctx, inv)
	if err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return out, zerr.With(commandError(err, inv), "stderr", strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

func (e *Executor) command(ctx context.Context, inv domain.Invocation) (*exec.Cmd, error) {
	if len(inv.Args) == 0 {
		return nil, domain.ErrEmptyCommand
	}

	name := inv.Args[0]
	executable := name
	if !filepath.IsAbs(name) && inv.Env.Len() > 0 {
		if lp, err := lookPath(name, inv.Env.Get("PATH")); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, inv.Args[1:]...) //nolint:gosec // arguments are built by the pipeline

	// exec.CommandContext sets Args[0] to the resolved path; keep the name as invoked.
	cmd.Args[0] = name
	cmd.Dir = inv.Dir
	if inv.Env.Len() > 0 {
		cmd.Env = inv.Env.Slice()
	}
	return cmd, nil
}

func commandError(err error, inv domain.Invocation) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	wrapped := zerr.Wrap(errors.Join(domain.ErrCommandFailed, err), "process failed")
	wrapped = zerr.With(wrapped, "command", strings.Join(inv.Args, " "))
	wrapped = zerr.With(wrapped, "dir", inv.Dir)
	return zerr.With(wrapped, "exit_code", exitCode)
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// logWriter buffers partial writes and emits one log call per complete line.
type logWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(string)
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Incomplete line: put it back and wait for more.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush emits any trailing partial line.
func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return
	}
	w.emit(strings.TrimRight(w.buf.String(), "\r\n"))
	w.buf.Reset()
}
