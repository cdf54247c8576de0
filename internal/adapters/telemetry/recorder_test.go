package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/torchbuild/internal/adapters/telemetry"
)

func TestRecorder_Steps(t *testing.T) {
	recorder := telemetry.New()
	ctx := context.Background()

	_, configure := recorder.Record(ctx, "configure")
	configure.Cached()
	configure.Complete(nil)

	_, build := recorder.Record(ctx, "build")
	_, err := build.Stdout().Write([]byte("[1/2] Building CXX object\n"))
	require.NoError(t, err)
	_, err = build.Stderr().Write([]byte("warning: unused variable\n"))
	require.NoError(t, err)
	build.Complete(errors.New("exit status 1"))

	assert.NoError(t, recorder.Close())
}

func TestNoOp(t *testing.T) {
	noop := telemetry.NewNoOp()
	ctx := context.Background()

	got, v := noop.Record(ctx, "build")
	assert.Equal(t, ctx, got)

	n, err := v.Stdout().Write([]byte("ignored"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	v.Cached()
	v.Complete(nil)
	assert.NoError(t, noop.Close())
}
