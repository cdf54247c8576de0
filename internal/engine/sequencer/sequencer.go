// Package sequencer drives the configure, build and post-build steps of a run.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports"
	"go.trai.ch/torchbuild/internal/engine/envsynth"
	"go.trai.ch/torchbuild/internal/engine/params"
	"go.trai.ch/torchbuild/internal/engine/staleness"
	"go.trai.ch/zerr"
)

// Step names recorded in telemetry.
const (
	StepConfigure   = "configure"
	StepBuild       = "build"
	StepTouch       = "touch manifest"
	StepCopyProtos  = "copy proto stubs"
	protoSubdir     = "caffe2/proto"
	protoInitModule = "__init__.py"
)

// Sequencer runs the external generator for a single build directory.
type Sequencer struct {
	executor  ports.Executor
	logger    ports.Logger
	synth     *envsynth.Synthesizer
	store     ports.StateStore
	telemetry ports.Telemetry

	now      func() time.Time
	cpuCount func() int
}

// New creates a new Sequencer.
func New(
	executor ports.Executor,
	logger ports.Logger,
	compilerEnv ports.CompilerEnvProbe,
	store ports.StateStore,
	telemetry ports.Telemetry,
) *Sequencer {
	return &Sequencer{
		executor:  executor,
		logger:    logger,
		synth:     envsynth.New(compilerEnv),
		store:     store,
		telemetry: telemetry,
		now:       time.Now,
		cpuCount:  runtime.NumCPU,
	}
}

// Execute configures (when needed) and builds cfg in opts.BuildDir.
// Any failing step aborts the run; nothing is retried or rolled back.
func (s *Sequencer) Execute(ctx context.Context, cfg *domain.RunConfig, opts domain.BuildOptions) error {
	if opts.BuildDir == "" {
		return domain.ErrInvalidBuildDir
	}

	env, err := s.synth.Synthesize(ctx, cfg)
	if err != nil {
		return err
	}

	jobs, err := Jobs(env, s.cpuCount)
	if err != nil {
		return err
	}

	if err := s.configure(ctx, cfg, opts, env); err != nil {
		return err
	}
	if opts.CMakeOnly {
		s.logger.Info("configure only, skipping build")
		return nil
	}

	if err := s.build(ctx, cfg, opts, env, jobs); err != nil {
		return err
	}

	s.touchManifest(ctx, opts.BuildDir)

	if opts.BuildPython {
		s.copyProtos(ctx, opts.BuildDir, cfg.SourceDir)
	}
	return nil
}

func (s *Sequencer) configure(
	ctx context.Context,
	cfg *domain.RunConfig,
	opts domain.BuildOptions,
	env domain.Environment,
) error {
	ctx, vertex := s.telemetry.Record(ctx, StepConfigure)

	needed, err := staleness.NeedsConfigure(opts.BuildDir, cfg.UseNinja, opts.RerunCMake)
	if err != nil {
		vertex.Complete(err)
		return err
	}
	if !needed {
		s.reportReuse(opts.BuildDir)
		vertex.Cached()
		vertex.Complete(nil)
		return nil
	}

	for _, dir := range []string{cfg.InstallDir, opts.BuildDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			err = zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dir)
			vertex.Complete(err)
			return err
		}
	}

	resolved := params.Resolve(cfg, opts)
	envsynth.CheckEncoding(env, s.logger)

	args := params.ConfigureArgs(cfg, resolved)
	s.logger.Info(formatArgs(args))

	inv := domain.Invocation{Args: args, Dir: opts.BuildDir, Env: env}
	if err := s.executor.Run(ctx, inv, vertex.Stdout(), vertex.Stderr()); err != nil {
		err = zerr.With(errors.Join(domain.ErrConfigureFailed, err), "build_dir", opts.BuildDir)
		vertex.Complete(err)
		return err
	}
	vertex.Complete(nil)

	record := domain.ConfigureRecord{
		BuildDir:     opts.BuildDir,
		Generator:    strings.Join(append([]string{cfg.CMake}, params.GeneratorFlags(cfg)...), " "),
		BuildType:    cfg.BuildType,
		Args:         args,
		ParamCount:   len(resolved),
		ConfiguredAt: s.now(),
	}
	if err := s.store.Put(record); err != nil {
		s.logger.Warn(fmt.Sprintf("failed to record configure state: %v", err))
	}
	return nil
}

func (s *Sequencer) reportReuse(buildDir string) {
	record, err := s.store.Get(buildDir)
	switch {
	case err != nil:
		s.logger.Debug(fmt.Sprintf("failed to read configure state: %v", err))
	case record != nil && !record.ConfiguredAt.IsZero():
		s.logger.Info(fmt.Sprintf("reusing build directory %s configured at %s",
			buildDir, record.ConfiguredAt.Format(time.RFC3339)))
	default:
		s.logger.Info("reusing build directory " + buildDir)
	}
}

func (s *Sequencer) build(
	ctx context.Context,
	cfg *domain.RunConfig,
	opts domain.BuildOptions,
	env domain.Environment,
	jobs int,
) error {
	ctx, vertex := s.telemetry.Record(ctx, StepBuild)

	args := BuildArgs(cfg, jobs)
	s.logger.Info(formatArgs(args))

	inv := domain.Invocation{Args: args, Dir: opts.BuildDir, Env: env}
	if err := s.executor.Run(ctx, inv, vertex.Stdout(), vertex.Stderr()); err != nil {
		err = zerr.With(errors.Join(domain.ErrBuildFailed, err), "build_dir", opts.BuildDir)
		vertex.Complete(err)
		return err
	}
	vertex.Complete(nil)
	return nil
}

// BuildArgs returns the build step argument vector.
func BuildArgs(cfg *domain.RunConfig, jobs int) []string {
	args := []string{cfg.CMake, "--build", ".", "--target", "install", "--config", cfg.BuildType, "--"}
	n := strconv.Itoa(jobs)
	if cfg.Platform.IsWindows() && !cfg.UseNinja {
		return append(args, "/maxcpucount:"+n)
	}
	return append(args, "-j", n)
}

// Jobs returns the build parallelism: MAX_JOBS when set, the CPU count otherwise.
func Jobs(env domain.Environment, cpuCount func() int) (int, error) {
	raw, ok := env.Lookup("MAX_JOBS")
	if !ok || strings.TrimSpace(raw) == "" {
		return max(cpuCount(), 1), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, zerr.With(zerr.Wrap(domain.ErrInvalidMaxJobs, "invalid MAX_JOBS"), "max_jobs", raw)
	}
	return n, nil
}

// touchManifest sets the Ninja manifest mtime to now so the backend does not see
// it as older than the .cu.depend files written during the build.
func (s *Sequencer) touchManifest(ctx context.Context, buildDir string) {
	manifest := domain.ManifestPath(buildDir)
	if _, err := os.Stat(manifest); err != nil {
		return
	}

	_, vertex := s.telemetry.Record(ctx, StepTouch)
	now := s.now()
	if err := os.Chtimes(manifest, now, now); err != nil {
		s.logger.Debug(fmt.Sprintf("failed to touch %s: %v", manifest, err))
	}
	vertex.Complete(nil)
}

// copyProtos copies the generated Python proto stubs back into the source tree.
// Failures are logged and do not fail the run.
func (s *Sequencer) copyProtos(ctx context.Context, buildDir, sourceDir string) {
	_, vertex := s.telemetry.Record(ctx, StepCopyProtos)
	defer vertex.Complete(nil)

	matches, err := filepath.Glob(filepath.Join(buildDir, protoSubdir, "*.py"))
	if err != nil || len(matches) == 0 {
		return
	}

	dst := filepath.Join(sourceDir, protoSubdir)
	if err := os.MkdirAll(dst, 0o750); err != nil {
		s.logger.Warn(fmt.Sprintf("failed to create %s: %v", dst, err))
		return
	}

	for _, src := range matches {
		if filepath.Base(src) == protoInitModule {
			continue
		}
		target := filepath.Join(dst, filepath.Base(src))
		if err := copyFile(src, target); err != nil {
			s.logger.Warn(fmt.Sprintf("failed to copy %s: %v", src, err))
			continue
		}
		s.logger.Debug("copied " + src + " to " + target)
	}
}

func copyFile(src, dst string) error {
	//nolint:gosec // Paths come from the build directory listing
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return &fs.PathError{Op: "copy", Path: src, Err: fs.ErrInvalid}
	}

	//nolint:gosec // Paths come from the build directory listing
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func formatArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			quoted[i] = strconv.Quote(a)
			continue
		}
		quoted[i] = a
	}
	return strings.Join(quoted, " ")
}
