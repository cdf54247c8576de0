// Package toolchain locates the generator and backend executables of a build.
package toolchain

import (
	"context"
	"path/filepath"
	"strings"

	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"
)

const (
	// CMake is the generator command used by default.
	CMake = "cmake"
	// CMake3 is the alternate generator name shipped by some distributions.
	CMake3 = "cmake3"
	// Ninja is the preferred build backend.
	Ninja = "ninja"

	// minBareVersion is the oldest bare cmake that is kept even when cmake3 is newer.
	minBareVersion = "v3.5.0"

	defaultPath    = "/bin:/usr/bin"
	defaultPathExt = ".COM;.EXE;.BAT;.CMD"
)

// Locator answers toolchain questions for a single run environment.
type Locator struct {
	executor ports.Executor
	env      domain.Environment
	platform domain.Platform
}

// NewLocator creates a Locator that searches the PATH of env.
func NewLocator(executor ports.Executor, env domain.Environment, platform domain.Platform) *Locator {
	return &Locator{
		executor: executor,
		env:      env,
		platform: platform,
	}
}

// FindExecutable returns the first executable called name on the search path.
func (l *Locator) FindExecutable(name string) (string, bool) {
	path, ok := l.env.Lookup("PATH")
	if !ok {
		path = defaultPath
		if l.platform.IsWindows() {
			path = ""
		}
	}

	candidates := l.candidateNames(name)
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}
		for _, candidate := range candidates {
			full := filepath.Join(dir, candidate)
			if isExecutable(full) {
				return full, true
			}
		}
	}
	return "", false
}

func (l *Locator) candidateNames(name string) []string {
	if !l.platform.IsWindows() {
		return []string{name}
	}

	exts := strings.Split(l.env.GetOr("PATHEXT", defaultPathExt), ";")
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(lower, strings.ToLower(ext)) {
			return []string{name}
		}
	}

	names := make([]string, 0, len(exts)+1)
	names = append(names, name)
	for _, ext := range exts {
		if ext == "" {
			continue
		}
		names = append(names, name+ext)
	}
	return names
}

// SelectGenerator returns the generator command to run.
//
// On Windows it is always cmake. Elsewhere cmake3 replaces cmake only when both are
// installed, cmake is older than 3.5.0 and cmake3 is newer than cmake.
func (l *Locator) SelectGenerator(ctx context.Context) (string, error) {
	if l.platform.IsWindows() {
		return CMake, nil
	}

	alt, ok := l.FindExecutable(CMake3)
	if !ok {
		return CMake, nil
	}
	bare, ok := l.FindExecutable(CMake)
	if !ok {
		return CMake, nil
	}

	var bareVersion, altVersion string
	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bareVersion, err = l.version(groupCtx, bare)
		return err
	})
	g.Go(func() (err error) {
		altVersion, err = l.version(groupCtx, alt)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	if semver.Compare(bareVersion, minBareVersion) < 0 && semver.Compare(altVersion, bareVersion) > 0 {
		return CMake3, nil
	}
	return CMake, nil
}

// UseNinja reports whether the Ninja backend is requested and installed.
func (l *Locator) UseNinja() bool {
	if domain.CheckNegativeEnvFlag(l.env, "USE_NINJA") {
		return false
	}
	_, ok := l.FindExecutable(Ninja)
	return ok
}

func (l *Locator) version(ctx context.Context, command string) (string, error) {
	out, err := l.executor.Output(ctx, domain.Invocation{
		Args: []string{command, "--version"},
		Env:  l.env,
	})
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to query generator version"), "command", command)
	}

	v, err := ParseVersion(string(out))
	if err != nil {
		return "", zerr.With(err, "command", command)
	}
	return v, nil
}

// ParseVersion extracts the version from a "<tool> version X.Y.Z" banner.
// The result is in semver form with a leading "v". Dotted numeric versions
// with more than three parts, such as 2.8.12.2, keep their first three.
func ParseVersion(banner string) (string, error) {
	for line := range strings.SplitSeq(banner, "\n") {
		if !strings.Contains(line, "version") {
			continue
		}
		fields := strings.Fields(line)
		for i, f := range fields {
			if f != "version" || i+1 >= len(fields) {
				continue
			}
			if v, ok := looseVersion(fields[i+1]); ok {
				return v, nil
			}
		}
	}
	return "", zerr.With(zerr.Wrap(domain.ErrVersionNotFound, "unrecognized version banner"), "banner", strings.TrimSpace(banner))
}

// looseVersion converts a dotted numeric token with an optional "-suffix" into
// canonical semver. Missing minor and patch parts are zero.
func looseVersion(token string) (string, bool) {
	core, pre, hasPre := strings.Cut(token, "-")
	parts := strings.Split(core, ".")
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			return "", false
		}
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	v := "v" + strings.Join(parts[:3], ".")
	if hasPre {
		v += "-" + pre
	}
	if !semver.IsValid(v) {
		return "", false
	}
	return v, true
}
