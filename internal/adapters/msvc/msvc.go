// Package msvc extracts the Visual C++ compiler environment on Windows.
package msvc

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports"
	"go.trai.ch/zerr"
)

const vcToolsComponent = "Microsoft.VisualStudio.Component.VC.Tools.x86.x64"

var _ ports.CompilerEnvProbe = (*Probe)(nil)

// Probe implements ports.CompilerEnvProbe by running vcvarsall.bat.
type Probe struct {
	executor ports.Executor
	env      domain.Environment
}

// New creates a Probe that reads VCVARSALL and ProgramFiles(x86) from env.
func New(executor ports.Executor, env domain.Environment) *Probe {
	return &Probe{
		executor: executor,
		env:      env,
	}
}

// CompilerEnv returns the variables vcvarsall.bat sets for the platform's architecture.
// Keys are upper-cased.
func (p *Probe) CompilerEnv(ctx context.Context, platform domain.Platform) (map[string]string, error) {
	if !platform.IsWindows() {
		return nil, zerr.With(zerr.Wrap(domain.ErrCompilerEnvUnavailable, "compiler environment probe requires windows"), "os", platform.OS)
	}

	vcvarsall, err := p.findVCVarsAll(ctx)
	if err != nil {
		return nil, err
	}

	arch := "x86"
	if platform.Is64Bit {
		arch = "x64"
	}

	out, err := p.executor.Output(ctx, domain.Invocation{
		Args: []string{"cmd.exe", "/c", vcvarsall, arch, "&&", "set"},
		Env:  p.env,
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrCompilerEnvUnavailable, err), "failed to run vcvarsall"), "path", vcvarsall)
	}

	vars := ParseSet(string(out))
	if len(vars) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrCompilerEnvUnavailable, "vcvarsall produced no environment"), "path", vcvarsall)
	}
	return vars, nil
}

func (p *Probe) findVCVarsAll(ctx context.Context) (string, error) {
	if path := p.env.Get("VCVARSALL"); path != "" {
		return path, nil
	}

	programFiles := p.env.GetOr("ProgramFiles(x86)", `C:\Program Files (x86)`)
	vswhere := filepath.Join(programFiles, "Microsoft Visual Studio", "Installer", "vswhere.exe")

	out, err := p.executor.Output(ctx, domain.Invocation{
		Args: []string{
			vswhere, "-latest", "-prerelease",
			"-requires", vcToolsComponent,
			"-property", "installationPath",
			"-products", "*",
		},
		Env: p.env,
	})
	if err != nil {
		return "", zerr.Wrap(errors.Join(domain.ErrCompilerEnvUnavailable, err), "failed to locate Visual Studio")
	}

	install := strings.TrimSpace(string(out))
	if install == "" {
		return "", zerr.Wrap(domain.ErrCompilerEnvUnavailable, "no Visual Studio installation with C++ tools")
	}
	return filepath.Join(install, "VC", "Auxiliary", "Build", "vcvarsall.bat"), nil
}

// ParseSet parses the KEY=VALUE lines printed by cmd's set builtin.
// Lines without a separator are skipped.
func ParseSet(output string) map[string]string {
	vars := make(map[string]string)
	for line := range strings.SplitSeq(output, "\n") {
		line = strings.TrimRight(line, "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		vars[strings.ToUpper(key)] = value
	}
	return vars
}
