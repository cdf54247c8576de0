// Package params derives the generator's configuration parameters from a run.
package params

import (
	"maps"
	"os"
	"slices"

	"go.trai.ch/torchbuild/internal/core/domain"
)

// rule contributes parameters to the set.
type rule func(set *domain.ParamSet, in input)

type input struct {
	cfg  *domain.RunConfig
	opts domain.BuildOptions
	env  domain.Environment
}

// rules run in order; a later rule overrides keys set by an earlier one.
var rules = []rule{
	capabilityParams,
	runOptionParams,
	envDefaultParams,
	flagParams,
	constantParams,
	compilerFlagParams,
	optionalParams,
	conditionalParams,
	capabilityConditionalParams,
	extraDefineParams,
	platformQuirkParams,
}

// Resolve returns the Present parameters of the run, sorted by key.
// Identical inputs produce identical output.
func Resolve(cfg *domain.RunConfig, opts domain.BuildOptions) []domain.Param {
	set := domain.NewParamSet()
	in := input{cfg: cfg, opts: opts, env: cfg.Env}
	for _, r := range rules {
		r(set, in)
	}
	return set.Params()
}

// Args renders params as -D<KEY>=<VALUE> arguments in their given order.
func Args(params []domain.Param) []string {
	return domain.Defines(params)
}

// GeneratorFlags returns the backend selection arguments of the configure step.
func GeneratorFlags(cfg *domain.RunConfig) []string {
	switch {
	case cfg.UseNinja:
		return []string{"-GNinja"}
	case cfg.Platform.IsWindows():
		flags := []string{"-GVisual Studio 15 2017"}
		if cfg.Platform.Is64Bit {
			flags = append(flags, "-Ax64", "-Thost=x64")
		}
		return flags
	default:
		return nil
	}
}

// ConfigureArgs returns the full configure argument vector.
// The source directory comes last so the generator picks up every definition.
func ConfigureArgs(cfg *domain.RunConfig, params []domain.Param) []string {
	args := make([]string, 0, len(params)+4)
	args = append(args, cfg.CMake)
	args = append(args, GeneratorFlags(cfg)...)
	args = append(args, Args(params)...)
	return append(args, cfg.SourceDir)
}

func capabilityParams(set *domain.ParamSet, in input) {
	caps := in.cfg.Capabilities
	path := in.cfg.Platform.Path

	set.Set("USE_CUDA", domain.Bool(caps.UseCUDA))
	set.Set("USE_DISTRIBUTED", domain.Bool(caps.UseDistributed))
	set.Set("USE_NUMPY", domain.Bool(caps.UseNumPy))
	set.Set("USE_SYSTEM_NCCL", domain.Bool(caps.UseSystemNCCL))
	set.Set("USE_ROCM", domain.Bool(caps.UseROCm))
	set.Set("USE_NNPACK", domain.Bool(caps.UseNNPACK))
	set.Set("USE_QNNPACK", domain.Bool(caps.UseQNNPACK))
	set.Set("USE_MKLDNN", domain.Bool(caps.UseMKLDNN))
	set.Set("USE_NCCL", domain.Bool(caps.UseNCCL))
	set.Set("NCCL_EXTERNAL", domain.Bool(caps.UseNCCL))

	set.Set("NUMPY_INCLUDE_DIR", path(caps.NumPyIncludeDir))
	set.Set("NCCL_INCLUDE_DIR", path(caps.NCCLIncludeDir))
	set.Set("NCCL_ROOT_DIR", path(caps.NCCLRootDir))
	set.Set("NCCL_SYSTEM_LIB", path(caps.NCCLSystemLib))
	set.Set("PYTHON_EXECUTABLE", path(caps.PythonExecutable))
}

func runOptionParams(set *domain.ParamSet, in input) {
	path := in.cfg.Platform.Path
	buildTest := !domain.CheckNegativeEnvFlag(in.env, "BUILD_TEST")

	set.Set("PYTHON_LIBRARY", path(in.opts.PythonLibrary))
	set.Set("PYTHON_INCLUDE_DIR", path(in.opts.PythonIncludeDir))
	set.Set("TORCH_BUILD_VERSION", domain.OptionalString(in.opts.Version, in.opts.Version != ""))
	set.Set("CMAKE_BUILD_TYPE", domain.String(in.cfg.BuildType))
	set.Set("BUILD_PYTHON", domain.Bool(in.opts.BuildPython))
	set.Set("BUILD_TEST", domain.Bool(buildTest))
	set.Set("INSTALL_TEST", domain.Bool(buildTest))
	set.Set("CMAKE_INSTALL_PREFIX", path(in.cfg.InstallDir))
}

func envDefaultParams(set *domain.ParamSet, in input) {
	env := in.env

	set.Set("BUILDING_WITH_TORCH_LIBS", domain.String(env.GetOr("BUILDING_WITH_TORCH_LIBS", "ON")))
	set.Set("BUILD_SHARED_LIBS", domain.String(env.GetOr("BUILD_SHARED_LIBS", "ON")))
	set.Set("ONNX_NAMESPACE", domain.String(env.GetOr("ONNX_NAMESPACE", "onnx_torch")))
	set.Set("ONNX_ML", domain.String(env.GetOr("ONNX_ML", "OFF")))

	// An empty CMAKE_PREFIX_PATH falls back to site-packages as well.
	prefix := env.Get("CMAKE_PREFIX_PATH")
	if prefix == "" {
		prefix = in.cfg.Capabilities.PythonSitePackages
	}
	set.Set("CMAKE_PREFIX_PATH", in.cfg.Platform.Path(prefix))

	if in.cfg.Platform.IsWindows() {
		set.Set("MSVC_Z7_OVERRIDE", domain.String(env.GetOr("MSVC_Z7_OVERRIDE", "ON")))
	}
}

func flagParams(set *domain.ParamSet, in input) {
	env := in.env
	flag := func(name string) domain.Value {
		return domain.Bool(domain.CheckEnvFlag(env, name, ""))
	}
	negative := func(name string) bool {
		return domain.CheckNegativeEnvFlag(env, name)
	}

	set.Set("BUILD_BINARY", flag("BUILD_BINARY"))
	set.Set("CAFFE2_STATIC_LINK_CUDA", flag("USE_CUDA_STATIC_LINK"))
	set.Set("USE_LEVELDB", flag("USE_LEVELDB"))
	set.Set("USE_LMDB", flag("USE_LMDB"))
	set.Set("USE_OPENCV", flag("USE_OPENCV"))
	set.Set("USE_TENSORRT", flag("USE_TENSORRT"))
	set.Set("USE_FFMPEG", flag("USE_FFMPEG"))
	set.Set("USE_ASAN", flag("USE_ASAN"))
	set.Set("BUILD_CAFFE2_OPS", domain.Bool(!negative("BUILD_CAFFE2_OPS")))
	set.Set("USE_FBGEMM", domain.Bool(!(domain.CheckEnvFlag(env, "NO_FBGEMM", "") || negative("USE_FBGEMM"))))
	set.Set("NAMEDTENSOR_ENABLED", domain.Bool(domain.CheckEnvFlag(env, "USE_NAMEDTENSOR", "") || negative("NO_NAMEDTENSOR")))
}

func constantParams(set *domain.ParamSet, _ input) {
	set.Set("USE_SYSTEM_EIGEN_INSTALL", domain.String("OFF"))
	set.Set("THD_SO_VERSION", domain.String("1"))
}

func compilerFlagParams(set *domain.ParamSet, in input) {
	cflags := in.env.Get("CFLAGS") + " " + in.env.Get("CPPFLAGS")
	if in.cfg.Platform.IsWindows() {
		cflags += " /EHa"
	}
	ldflags := in.env.Get("LDFLAGS")

	set.Set("CMAKE_C_FLAGS", domain.String(cflags))
	set.Set("CMAKE_CXX_FLAGS", domain.String(cflags))
	set.Set("CMAKE_EXE_LINKER_FLAGS", domain.String(ldflags))
	set.Set("CMAKE_SHARED_LINKER_FLAGS", domain.String(ldflags))
}

// optionalParams pass raw values through and are omitted when the variable is unset.
func optionalParams(set *domain.ParamSet, in input) {
	for _, name := range []string{"BLAS", "USE_REDIS", "USE_GLOG", "USE_GFLAGS", "WERROR"} {
		v, ok := in.env.Lookup(name)
		set.Set(name, domain.OptionalString(v, ok))
	}
	set.Set("CUDA_NVCC_EXECUTABLE", in.cfg.Platform.Path(in.env.Get("CUDA_NVCC_EXECUTABLE")))
}

// conditionalParams exist only when their source variable is set at all.
func conditionalParams(set *domain.ParamSet, in input) {
	env := in.env

	raw := func(key, name string) {
		if v, ok := env.Lookup(name); ok {
			set.Set(key, domain.String(v))
		}
	}
	flag := func(key, name string) {
		if env.Has(name) {
			set.Set(key, domain.Bool(domain.CheckEnvFlag(env, name, "")))
		}
	}

	raw("GLIBCXX_USE_CXX11_ABI", "_GLIBCXX_USE_CXX11_ABI")
	flag("USE_OPENMP", "USE_OPENMP")
	flag("USE_TBB", "USE_TBB")
	flag("INTEL_MKL_SEQUENTIAL", "MKL_SEQ")
	flag("INTEL_MKL_TBB", "MKL_TBB")
	raw("MKLDNN_THREADING", "MKLDNN_THREADING")
	raw("PARALLEL_BACKEND", "PARALLEL_BACKEND")
}

func capabilityConditionalParams(set *domain.ParamSet, in input) {
	caps := in.cfg.Capabilities
	if caps.UseGlooIBVerbs {
		set.Set("USE_IBVERBS", domain.String("1"))
		set.Set("USE_GLOO_IBVERBS", domain.String("1"))
	}
	if caps.UseMKLDNN {
		set.Set("MKLDNN_ENABLE_CONCURRENT_EXEC", domain.String("ON"))
	}
}

func extraDefineParams(set *domain.ParamSet, in input) {
	for _, k := range slices.Sorted(maps.Keys(in.cfg.ExtraDefines)) {
		set.Set(k, domain.String(in.cfg.ExtraDefines[k]))
	}
}

func platformQuirkParams(set *domain.ParamSet, in input) {
	wrapper := in.cfg.CCacheWrapper
	if !in.cfg.Platform.IsDarwin() || wrapper == "" {
		return
	}
	if _, err := os.Stat(wrapper); err != nil {
		return
	}
	set.Set("CMAKE_C_COMPILER", domain.String(wrapper+"/gcc"))
	set.Set("CMAKE_CXX_COMPILER", domain.String(wrapper+"/g++"))
}
