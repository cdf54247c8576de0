// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/torchbuild/internal/core/domain"
)

// Executor runs external processes.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run executes the invocation synchronously in its working directory with exactly
	// its environment, streaming output to stdout and stderr.
	//
	// It returns an error wrapping domain.ErrCommandFailed if the process cannot be
	// started or exits with a nonzero status.
	Run(ctx context.Context, inv domain.Invocation, stdout, stderr io.Writer) error

	// Output executes the invocation and returns its standard output.
	Output(ctx context.Context, inv domain.Invocation) ([]byte, error)
}
