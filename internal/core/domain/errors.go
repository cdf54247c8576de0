package domain

import "go.trai.ch/zerr"

var (
	// ErrVersionNotFound is returned when a generator's version banner has no parseable version.
	ErrVersionNotFound = zerr.New("no version found")

	// ErrConfigureFailed is returned when the configure process exits unsuccessfully.
	ErrConfigureFailed = zerr.New("configure step failed")

	// ErrBuildFailed is returned when the build process exits unsuccessfully.
	ErrBuildFailed = zerr.New("build step failed")

	// ErrCommandFailed is returned by executors when a subprocess cannot run or exits nonzero.
	ErrCommandFailed = zerr.New("command failed")

	// ErrEmptyCommand is returned when an invocation carries no arguments.
	ErrEmptyCommand = zerr.New("empty command")

	// ErrInvalidBuildDir is returned when no build directory was supplied.
	ErrInvalidBuildDir = zerr.New("build directory is required")

	// ErrCompilerEnvUnavailable is returned when the platform compiler environment cannot be probed.
	ErrCompilerEnvUnavailable = zerr.New("compiler environment unavailable")

	// ErrInvalidConfig is returned when the settings file cannot be parsed or is inconsistent.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrInvalidMaxJobs is returned when MAX_JOBS is not a positive integer.
	ErrInvalidMaxJobs = zerr.New("invalid MAX_JOBS value")
)
