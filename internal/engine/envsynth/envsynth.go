// Package envsynth builds the environment handed to the generator and build processes.
package envsynth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports"
	"go.trai.ch/zerr"
)

// Overlay transforms one environment snapshot into the next.
type Overlay func(domain.Environment) (domain.Environment, error)

// Synthesizer layers the run's overlays on top of the captured process environment.
type Synthesizer struct {
	compilerEnv ports.CompilerEnvProbe
}

// New creates a Synthesizer. compilerEnv is only consulted on Windows with Ninja.
func New(compilerEnv ports.CompilerEnvProbe) *Synthesizer {
	return &Synthesizer{compilerEnv: compilerEnv}
}

// Synthesize returns the build environment for cfg.
func (s *Synthesizer) Synthesize(ctx context.Context, cfg *domain.RunConfig) (domain.Environment, error) {
	return Apply(cfg.Env, s.Overlays(ctx, cfg)...)
}

// Overlays returns the ordered overlays for cfg.
func (s *Synthesizer) Overlays(ctx context.Context, cfg *domain.RunConfig) []Overlay {
	caps := cfg.Capabilities
	overlays := make([]Overlay, 0, 3)

	if caps.UseCuDNN {
		overlays = append(overlays, Set(map[string]string{
			"CUDNN_LIBRARY":     cfg.Platform.Normalize(caps.CuDNNLibrary),
			"CUDNN_INCLUDE_DIR": cfg.Platform.Normalize(caps.CuDNNIncludeDir),
		}))
	}
	if caps.UseCUDA {
		overlays = append(overlays, Set(map[string]string{
			"CUDA_BIN_PATH": cfg.Platform.Normalize(caps.CUDAHome),
		}))
	}
	if cfg.Platform.IsWindows() && cfg.UseNinja {
		overlays = append(overlays, s.compilerOverlay(ctx, cfg.Platform))
	}
	return overlays
}

// Apply runs overlays over base in order.
func Apply(base domain.Environment, overlays ...Overlay) (domain.Environment, error) {
	env := base
	for _, overlay := range overlays {
		next, err := overlay(env)
		if err != nil {
			return domain.Environment{}, err
		}
		env = next
	}
	return env, nil
}

// Set returns an overlay whose keys replace existing values.
func Set(vars map[string]string) Overlay {
	return func(env domain.Environment) (domain.Environment, error) {
		return env.Merge(vars), nil
	}
}

// FillGaps returns an overlay that only adds keys absent from the environment.
// Keys are compared case-insensitively and added upper-cased.
func FillGaps(vars map[string]string) Overlay {
	return func(env domain.Environment) (domain.Environment, error) {
		present := make(map[string]struct{}, env.Len())
		for _, k := range env.Keys() {
			present[strings.ToUpper(k)] = struct{}{}
		}

		add := make(map[string]string)
		for k, v := range vars {
			uk := strings.ToUpper(k)
			if _, ok := present[uk]; ok {
				continue
			}
			add[uk] = v
		}
		return env.Merge(add), nil
	}
}

func (s *Synthesizer) compilerOverlay(ctx context.Context, platform domain.Platform) Overlay {
	return func(env domain.Environment) (domain.Environment, error) {
		if s.compilerEnv == nil {
			return domain.Environment{}, domain.ErrCompilerEnvUnavailable
		}
		vars, err := s.compilerEnv.CompilerEnv(ctx, platform)
		if err != nil {
			return domain.Environment{}, zerr.Wrap(errors.Join(domain.ErrCompilerEnvUnavailable, err), "failed to load compiler environment")
		}

		env, err = FillGaps(vars)(env)
		if err != nil {
			return domain.Environment{}, err
		}
		return env.WithDefault("CC", "cl").WithDefault("CXX", "cl"), nil
	}
}

// CheckEncoding warns about gh* variables whose values are not valid UTF-8.
// The values are kept unchanged.
func CheckEncoding(env domain.Environment, logger ports.Logger) {
	for _, k := range env.Keys() {
		if !strings.HasPrefix(k, "gh") {
			continue
		}
		v := env.Get(k)
		if utf8.ValidString(v) {
			continue
		}
		logger.Warn(fmt.Sprintf("Invalid ENV[%s] = %s", k, hexDump(v)))
	}
}

func hexDump(s string) string {
	parts := make([]string, 0, len(s))
	for i := 0; i < len(s); i++ {
		parts = append(parts, fmt.Sprintf("%02x", s[i]))
	}
	return strings.Join(parts, ":")
}
