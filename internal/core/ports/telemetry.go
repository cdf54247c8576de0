package ports

import (
	"context"
	"io"
)

// Telemetry records the pipeline steps of a run.
type Telemetry interface {
	// Record starts a new vertex named name.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes the recording session.
	Close() error
}

// Vertex is a single recorded step.
type Vertex interface {
	// Stdout returns a writer capturing the step's standard output.
	Stdout() io.Writer
	// Stderr returns a writer capturing the step's error output.
	Stderr() io.Writer
	// Complete marks the step finished, successfully when err is nil.
	Complete(err error)
	// Cached marks the step as skipped because existing state was reused.
	Cached()
}
