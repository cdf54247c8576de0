package domain

import (
	"path/filepath"
	"time"
)

const (
	// CacheFile is the generator cache written by the configure step.
	CacheFile = "CMakeCache.txt"
	// NinjaManifest is the Ninja backend's primary build script.
	NinjaManifest = "build.ninja"
	// StateFile holds the last configure record inside the build directory.
	StateFile = ".torchbuild.json"
	// InstallDirName is the install prefix relative to the source directory.
	InstallDirName = "torch"
)

// Build types accepted by CMAKE_BUILD_TYPE.
const (
	BuildTypeRelease        = "Release"
	BuildTypeDebug          = "Debug"
	BuildTypeRelWithDebInfo = "RelWithDebInfo"
)

// BuildOptions carries the per-invocation request from the caller.
type BuildOptions struct {
	// Version is the project version passed as TORCH_BUILD_VERSION.
	Version string
	// PythonLibrary is the path to the Python shared library.
	PythonLibrary string
	// PythonIncludeDir is the Python headers directory.
	PythonIncludeDir string
	// BuildPython enables the Python bindings and the proto stub copy.
	BuildPython bool
	// BuildPythonSet marks BuildPython as explicitly chosen by the caller.
	BuildPythonSet bool
	// RerunCMake forces the configure step by deleting the generator cache.
	RerunCMake bool
	// CMakeOnly stops after the configure step.
	CMakeOnly bool
	// BuildDir is the generator's build directory.
	BuildDir string
}

// RunConfig is the complete, explicit configuration of a single run.
// It is built once before the pipeline starts and threaded through every component.
type RunConfig struct {
	SourceDir  string
	InstallDir string
	BuildType  string
	// CMake is the generator command name or path.
	CMake    string
	UseNinja bool
	Platform Platform
	// Env is the captured process environment.
	Env          Environment
	Capabilities Capabilities
	// ExtraDefines are user-supplied parameters merged before platform quirks.
	ExtraDefines map[string]string
	// CCacheWrapper is the macOS ccache shim directory checked by the resolver.
	CCacheWrapper string
}

// CacheFilePath returns the generator cache path inside buildDir.
func CacheFilePath(buildDir string) string {
	return filepath.Join(buildDir, CacheFile)
}

// ManifestPath returns the Ninja manifest path inside buildDir.
func ManifestPath(buildDir string) string {
	return filepath.Join(buildDir, NinjaManifest)
}

// ResolveBuildType derives CMAKE_BUILD_TYPE from DEBUG and REL_WITH_DEB_INFO.
func ResolveBuildType(env Environment) string {
	switch {
	case CheckEnvFlag(env, "DEBUG", ""):
		return BuildTypeDebug
	case CheckEnvFlag(env, "REL_WITH_DEB_INFO", ""):
		return BuildTypeRelWithDebInfo
	default:
		return BuildTypeRelease
	}
}

// Invocation is a single external process run.
type Invocation struct {
	Args []string
	Dir  string
	Env  Environment
}

// ConfigureRecord summarizes the last successful configure of a build directory.
type ConfigureRecord struct {
	BuildDir     string    `json:"build_dir,omitzero"`
	Generator    string    `json:"generator,omitzero"`
	BuildType    string    `json:"build_type,omitzero"`
	Fingerprint  string    `json:"fingerprint,omitzero"`
	Args         []string  `json:"args,omitzero"`
	ParamCount   int       `json:"param_count,omitzero"`
	ConfiguredAt time.Time `json:"configured_at,omitzero"`
}
