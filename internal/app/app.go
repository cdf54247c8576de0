// Package app implements the application layer for torchbuild.
package app

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/torchbuild/internal/adapters/toolchain" //nolint:depguard // Wired in app layer
	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports"
	"go.trai.ch/torchbuild/internal/engine/params"
	"go.trai.ch/torchbuild/internal/engine/sequencer"
	"go.trai.ch/torchbuild/internal/engine/staleness"
	"go.trai.ch/zerr"
)

const (
	// DefaultBuildDir is the build directory used when none is configured,
	// relative to the source directory.
	DefaultBuildDir = "build"
	// CCacheWrapper is the Homebrew ccache shim directory picked up on macOS.
	CCacheWrapper = "/usr/local/opt/ccache/libexec"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	executor     ports.Executor
	logger       ports.Logger
	probe        ports.CapabilityProbe
	compilerEnv  ports.CompilerEnvProbe
	store        ports.StateStore
	telemetry    ports.Telemetry

	environ  func() []string
	platform domain.Platform
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	executor ports.Executor,
	logger ports.Logger,
	probe ports.CapabilityProbe,
	compilerEnv ports.CompilerEnvProbe,
	store ports.StateStore,
	telemetry ports.Telemetry,
) *App {
	return &App{
		configLoader: loader,
		executor:     executor,
		logger:       logger,
		probe:        probe,
		compilerEnv:  compilerEnv,
		store:        store,
		telemetry:    telemetry,
		environ:      os.Environ,
		platform:     domain.HostPlatform(),
	}
}

// WithEnviron replaces the process environment source.
func (a *App) WithEnviron(environ func() []string) *App {
	a.environ = environ
	return a
}

// WithPlatform replaces the detected host platform.
func (a *App) WithPlatform(platform domain.Platform) *App {
	a.platform = platform
	return a
}

// Build configures (when needed) and builds the project in sourceDir.
func (a *App) Build(ctx context.Context, sourceDir string, opts domain.BuildOptions) error {
	cfg, opts, err := a.Prepare(ctx, sourceDir, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.telemetry.Close(); err != nil {
			a.logger.Debug("failed to close telemetry: " + err.Error())
		}
	}()

	seq := sequencer.New(a.executor, a.logger, a.compilerEnv, a.store, a.telemetry)
	if err := seq.Execute(ctx, cfg, opts); err != nil {
		return zerr.Wrap(err, "build failed")
	}
	return nil
}

// Params returns the configure argument vector the build would run, without running anything.
func (a *App) Params(ctx context.Context, sourceDir string, opts domain.BuildOptions) ([]string, error) {
	cfg, opts, err := a.Prepare(ctx, sourceDir, opts)
	if err != nil {
		return nil, err
	}
	return params.ConfigureArgs(cfg, params.Resolve(cfg, opts)), nil
}

// Status describes a build directory.
type Status struct {
	BuildDir       string
	CachePresent   bool
	ManifestNeeded bool
	Manifest       bool
	NeedsConfigure bool
	Record         *domain.ConfigureRecord
}

// Status inspects the build directory of sourceDir without modifying it.
func (a *App) Status(ctx context.Context, sourceDir string, opts domain.BuildOptions) (Status, error) {
	cfg, opts, err := a.Prepare(ctx, sourceDir, opts)
	if err != nil {
		return Status{}, err
	}

	needs, err := staleness.NeedsConfigure(opts.BuildDir, cfg.UseNinja, false)
	if err != nil {
		return Status{}, err
	}
	record, err := a.store.Get(opts.BuildDir)
	if err != nil {
		return Status{}, err
	}

	return Status{
		BuildDir:       opts.BuildDir,
		CachePresent:   fileExists(domain.CacheFilePath(opts.BuildDir)),
		ManifestNeeded: cfg.UseNinja,
		Manifest:       fileExists(domain.ManifestPath(opts.BuildDir)),
		NeedsConfigure: needs,
		Record:         record,
	}, nil
}

// Prepare builds the run configuration once: settings, toolchain, capabilities and
// environment are resolved here and never consulted again during the run.
func (a *App) Prepare(
	ctx context.Context,
	sourceDir string,
	opts domain.BuildOptions,
) (*domain.RunConfig, domain.BuildOptions, error) {
	source, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, opts, zerr.With(zerr.Wrap(err, "failed to resolve source directory"), "path", sourceDir)
	}

	settings, err := a.configLoader.Load(source)
	if err != nil {
		return nil, opts, zerr.Wrap(err, "failed to load configuration")
	}
	opts = settings.Apply(opts)

	if opts.BuildDir == "" {
		opts.BuildDir = DefaultBuildDir
	}
	if !filepath.IsAbs(opts.BuildDir) {
		opts.BuildDir = filepath.Join(source, opts.BuildDir)
	}

	env := domain.ParseEnvironment(a.environ())
	locator := toolchain.NewLocator(a.executor, env, a.platform)

	cmake, err := locator.SelectGenerator(ctx)
	if err != nil {
		return nil, opts, zerr.Wrap(err, "failed to select generator")
	}

	caps, err := a.probe.Probe(ctx, env, a.platform)
	if err != nil {
		return nil, opts, zerr.Wrap(err, "failed to probe capabilities")
	}
	if opts.PythonIncludeDir == "" {
		opts.PythonIncludeDir = caps.PythonIncludeDir
	}

	cfg := &domain.RunConfig{
		SourceDir:     source,
		InstallDir:    filepath.Join(source, domain.InstallDirName),
		BuildType:     domain.ResolveBuildType(env),
		CMake:         cmake,
		UseNinja:      locator.UseNinja(),
		Platform:      a.platform,
		Env:           env,
		Capabilities:  caps,
		ExtraDefines:  settings.Defines,
		CCacheWrapper: CCacheWrapper,
	}

	a.logger.Debug("generator: " + cfg.CMake + ", build type: " + cfg.BuildType)
	return cfg, opts, nil
}

// SetVerbose toggles debug logging when the logger supports it.
func (a *App) SetVerbose(verbose bool) {
	if v, ok := a.logger.(interface{ SetVerbose(bool) }); ok {
		v.SetVerbose(verbose)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
