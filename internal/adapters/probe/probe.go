// Package probe resolves optional native dependencies and Python facts from the environment.
package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/torchbuild/internal/adapters/toolchain"
	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports"
)

const (
	defaultCUDAHome = "/usr/local/cuda"
	defaultROCmHome = "/opt/rocm"
)

// pythonScript prints the interpreter path, include dir, site-packages and NumPy include dir.
const pythonScript = `import sys, sysconfig
paths = sysconfig.get_paths()
print(sys.executable)
print(paths["include"])
print(paths["purelib"])
try:
    import numpy
    print(numpy.get_include())
except ImportError:
    print("")
`

var _ ports.CapabilityProbe = (*Probe)(nil)

// Probe implements ports.CapabilityProbe.
type Probe struct {
	executor ports.Executor
	logger   ports.Logger

	cudaHome string
	rocmHome string
}

// New creates a new Probe.
func New(executor ports.Executor, logger ports.Logger) *Probe {
	return &Probe{
		executor: executor,
		logger:   logger,
		cudaHome: defaultCUDAHome,
		rocmHome: defaultROCmHome,
	}
}

// Probe inspects env and the host and returns the resolved capabilities.
func (p *Probe) Probe(ctx context.Context, env domain.Environment, platform domain.Platform) (domain.Capabilities, error) {
	var caps domain.Capabilities

	p.probeCUDA(&caps, env, platform)
	p.probeNCCL(&caps, env, platform)
	p.probeROCm(&caps, env)

	caps.UseDistributed = !platform.IsWindows() && !domain.CheckNegativeEnvFlag(env, "USE_DISTRIBUTED")
	caps.UseGlooIBVerbs = caps.UseDistributed && domain.CheckEnvFlag(env, "USE_GLOO_IBVERBS", "")

	caps.UseNNPACK = !domain.CheckNegativeEnvFlag(env, "USE_NNPACK")
	caps.UseQNNPACK = !domain.CheckNegativeEnvFlag(env, "USE_QNNPACK")
	caps.UseMKLDNN = !domain.CheckNegativeEnvFlag(env, "USE_MKLDNN")

	p.probePython(ctx, &caps, env, platform)
	return caps, nil
}

func (p *Probe) probeCUDA(caps *domain.Capabilities, env domain.Environment, platform domain.Platform) {
	if domain.CheckNegativeEnvFlag(env, "USE_CUDA") || platform.IsDarwin() {
		return
	}

	home := firstSet(env, "CUDA_HOME", "CUDA_PATH")
	if home == "" && !platform.IsWindows() {
		home = p.cudaHome
	}
	if !isDir(home) {
		return
	}
	caps.UseCUDA = true
	caps.CUDAHome = home

	if domain.CheckNegativeEnvFlag(env, "USE_CUDNN") {
		return
	}
	include := env.GetOr("CUDNN_INCLUDE_DIR", filepath.Join(home, "include"))
	library := env.Get("CUDNN_LIBRARY")
	if library == "" {
		libDir := env.GetOr("CUDNN_LIB_DIR", filepath.Join(home, libSubdir(platform)))
		library = filepath.Join(libDir, cudnnLibrary(platform))
	}
	if !isFile(filepath.Join(include, "cudnn.h")) || !isFile(library) {
		return
	}
	caps.UseCuDNN = true
	caps.CuDNNIncludeDir = include
	caps.CuDNNLibrary = library
}

func (p *Probe) probeNCCL(caps *domain.Capabilities, env domain.Environment, platform domain.Platform) {
	if !caps.UseCUDA || platform.IsWindows() || domain.CheckNegativeEnvFlag(env, "USE_NCCL") {
		return
	}
	caps.UseNCCL = true

	if !domain.CheckEnvFlag(env, "USE_SYSTEM_NCCL", "") {
		return
	}
	caps.UseSystemNCCL = true
	caps.NCCLRootDir = env.Get("NCCL_ROOT_DIR")
	caps.NCCLIncludeDir = env.Get("NCCL_INCLUDE_DIR")
	caps.NCCLSystemLib = env.Get("NCCL_SYSTEM_LIB")

	if root := caps.NCCLRootDir; root != "" {
		if caps.NCCLIncludeDir == "" {
			caps.NCCLIncludeDir = filepath.Join(root, "include")
		}
		if caps.NCCLSystemLib == "" {
			caps.NCCLSystemLib = filepath.Join(root, "lib", "libnccl.so")
		}
	}
}

func (p *Probe) probeROCm(caps *domain.Capabilities, env domain.Environment) {
	if domain.CheckNegativeEnvFlag(env, "USE_ROCM") || caps.UseCUDA {
		return
	}
	caps.UseROCm = domain.CheckEnvFlag(env, "USE_ROCM", "") || isDir(env.GetOr("ROCM_HOME", p.rocmHome))
}

func (p *Probe) probePython(ctx context.Context, caps *domain.Capabilities, env domain.Environment, platform domain.Platform) {
	locator := toolchain.NewLocator(p.executor, env, platform)

	var python string
	for _, name := range []string{"python3", "python"} {
		if path, ok := locator.FindExecutable(name); ok {
			python = path
			break
		}
	}
	if python == "" {
		p.logger.Debug("no python interpreter found on PATH")
		return
	}

	out, err := p.executor.Output(ctx, domain.Invocation{
		Args: []string{python, "-c", pythonScript},
		Env:  env,
	})
	if err != nil {
		p.logger.Debug(fmt.Sprintf("failed to query python %s: %v", python, err))
		caps.PythonExecutable = python
		return
	}

	lines := strings.Split(strings.ReplaceAll(string(out), "\r\n", "\n"), "\n")
	field := func(i int) string {
		if i < len(lines) {
			return strings.TrimSpace(lines[i])
		}
		return ""
	}

	caps.PythonExecutable = field(0)
	if caps.PythonExecutable == "" {
		caps.PythonExecutable = python
	}
	caps.PythonIncludeDir = field(1)
	caps.PythonSitePackages = field(2)
	caps.NumPyIncludeDir = field(3)
	caps.UseNumPy = caps.NumPyIncludeDir != "" && !domain.CheckNegativeEnvFlag(env, "USE_NUMPY")
	if !caps.UseNumPy {
		caps.NumPyIncludeDir = ""
	}
}

func firstSet(env domain.Environment, names ...string) string {
	for _, name := range names {
		if v := env.Get(name); v != "" {
			return v
		}
	}
	return ""
}

func libSubdir(platform domain.Platform) string {
	switch {
	case platform.IsWindows():
		return filepath.Join("lib", "x64")
	case platform.Is64Bit:
		return "lib64"
	default:
		return "lib"
	}
}

func cudnnLibrary(platform domain.Platform) string {
	if platform.IsWindows() {
		return "cudnn.lib"
	}
	return "libcudnn.so"
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
