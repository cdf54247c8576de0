package ports

import (
	"context"

	"go.trai.ch/torchbuild/internal/core/domain"
)

// CapabilityProbe resolves the optional native dependencies available to the build.
//
//go:generate go run go.uber.org/mock/mockgen -source=probe.go -destination=mocks/mock_probe.go -package=mocks
type CapabilityProbe interface {
	// Probe inspects env and the host and returns the resolved capabilities.
	Probe(ctx context.Context, env domain.Environment, platform domain.Platform) (domain.Capabilities, error)
}

// CompilerEnvProbe extracts the platform compiler environment (for example the
// variables set by vcvarsall.bat on Windows).
type CompilerEnvProbe interface {
	// CompilerEnv returns the variables the compiler toolchain expects.
	// Keys are returned as the toolchain reports them.
	CompilerEnv(ctx context.Context, platform domain.Platform) (map[string]string, error)
}
