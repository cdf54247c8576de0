package params_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/engine/params"
)

var (
	linux   = domain.Platform{OS: "linux", Arch: "amd64", PathSeparator: '/', Is64Bit: true}
	windows = domain.Platform{OS: "windows", Arch: "amd64", PathSeparator: '\\', Is64Bit: true}
	darwin  = domain.Platform{OS: "darwin", Arch: "arm64", PathSeparator: '/', Is64Bit: true}
)

func baseConfig(env map[string]string) *domain.RunConfig {
	return &domain.RunConfig{
		SourceDir:  "/src",
		InstallDir: "/src/torch",
		BuildType:  domain.BuildTypeRelease,
		CMake:      "cmake",
		Platform:   linux,
		Env:        domain.NewEnvironment(env),
	}
}

func baseOptions() domain.BuildOptions {
	return domain.BuildOptions{
		Version:          "1.2.0",
		PythonLibrary:    "/usr/lib/libpython3.so",
		PythonIncludeDir: "/usr/include/python3",
		BuildPython:      true,
		BuildDir:         "/src/build",
	}
}

func resolveMap(cfg *domain.RunConfig, opts domain.BuildOptions) map[string]string {
	out := make(map[string]string)
	for _, p := range params.Resolve(cfg, opts) {
		out[p.Key] = p.Value.Text()
	}
	return out
}

func TestResolve_Baseline(t *testing.T) {
	got := params.Args(params.Resolve(baseConfig(nil), baseOptions()))

	want := []string{
		"-DBUILDING_WITH_TORCH_LIBS=ON",
		"-DBUILD_BINARY=OFF",
		"-DBUILD_CAFFE2_OPS=ON",
		"-DBUILD_PYTHON=ON",
		"-DBUILD_SHARED_LIBS=ON",
		"-DBUILD_TEST=ON",
		"-DCAFFE2_STATIC_LINK_CUDA=OFF",
		"-DCMAKE_BUILD_TYPE=Release",
		"-DCMAKE_CXX_FLAGS= ",
		"-DCMAKE_C_FLAGS= ",
		"-DCMAKE_EXE_LINKER_FLAGS=",
		"-DCMAKE_INSTALL_PREFIX=/src/torch",
		"-DCMAKE_SHARED_LINKER_FLAGS=",
		"-DINSTALL_TEST=ON",
		"-DNAMEDTENSOR_ENABLED=OFF",
		"-DNCCL_EXTERNAL=OFF",
		"-DONNX_ML=OFF",
		"-DONNX_NAMESPACE=onnx_torch",
		"-DPYTHON_INCLUDE_DIR=/usr/include/python3",
		"-DPYTHON_LIBRARY=/usr/lib/libpython3.so",
		"-DTHD_SO_VERSION=1",
		"-DTORCH_BUILD_VERSION=1.2.0",
		"-DUSE_ASAN=OFF",
		"-DUSE_CUDA=OFF",
		"-DUSE_DISTRIBUTED=OFF",
		"-DUSE_FBGEMM=ON",
		"-DUSE_FFMPEG=OFF",
		"-DUSE_LEVELDB=OFF",
		"-DUSE_LMDB=OFF",
		"-DUSE_MKLDNN=OFF",
		"-DUSE_NCCL=OFF",
		"-DUSE_NNPACK=OFF",
		"-DUSE_NUMPY=OFF",
		"-DUSE_OPENCV=OFF",
		"-DUSE_QNNPACK=OFF",
		"-DUSE_ROCM=OFF",
		"-DUSE_SYSTEM_EIGEN_INSTALL=OFF",
		"-DUSE_SYSTEM_NCCL=OFF",
		"-DUSE_TENSORRT=OFF",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_Stable(t *testing.T) {
	env := map[string]string{
		"BLAS":        "OpenBLAS",
		"USE_OPENMP":  "1",
		"CFLAGS":      "-O2",
		"MKL_SEQ":     "yes",
		"USE_FBGEMM":  "0",
		"WERROR":      "1",
		"ONNX_ML":     "1",
		"CUDA_HOME":   "/usr/local/cuda",
		"DEBUG":       "1",
		"INSTALL_DIR": "/ignored",
	}

	first := params.Args(params.Resolve(baseConfig(env), baseOptions()))
	for range 10 {
		again := params.Args(params.Resolve(baseConfig(env), baseOptions()))
		require.Empty(t, cmp.Diff(first, again))
	}
}

func TestResolve_ConditionalInclusion(t *testing.T) {
	tests := []struct {
		key    string
		source string
	}{
		{key: "GLIBCXX_USE_CXX11_ABI", source: "_GLIBCXX_USE_CXX11_ABI"},
		{key: "USE_OPENMP", source: "USE_OPENMP"},
		{key: "USE_TBB", source: "USE_TBB"},
		{key: "INTEL_MKL_SEQUENTIAL", source: "MKL_SEQ"},
		{key: "INTEL_MKL_TBB", source: "MKL_TBB"},
		{key: "MKLDNN_THREADING", source: "MKLDNN_THREADING"},
		{key: "PARALLEL_BACKEND", source: "PARALLEL_BACKEND"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			absent := resolveMap(baseConfig(nil), baseOptions())
			assert.NotContains(t, absent, tt.key)

			for _, value := range []string{"1", "0", "OFF", "anything"} {
				got := resolveMap(baseConfig(map[string]string{tt.source: value}), baseOptions())
				assert.Contains(t, got, tt.key, "value %q", value)
			}
		})
	}
}

func TestResolve_ConditionalFlagValues(t *testing.T) {
	got := resolveMap(baseConfig(map[string]string{
		"USE_OPENMP":             "1",
		"USE_TBB":                "0",
		"MKL_SEQ":                "whatever",
		"_GLIBCXX_USE_CXX11_ABI": "0",
		"PARALLEL_BACKEND":       "NATIVE",
	}), baseOptions())

	assert.Equal(t, "ON", got["USE_OPENMP"])
	assert.Equal(t, "OFF", got["USE_TBB"])
	assert.Equal(t, "OFF", got["INTEL_MKL_SEQUENTIAL"])
	assert.Equal(t, "0", got["GLIBCXX_USE_CXX11_ABI"])
	assert.Equal(t, "NATIVE", got["PARALLEL_BACKEND"])
}

func TestResolve_OptionalRawValues(t *testing.T) {
	got := resolveMap(baseConfig(map[string]string{
		"BLAS":                 "MKL",
		"USE_GLOG":             "",
		"CUDA_NVCC_EXECUTABLE": "/opt/cuda/bin/nvcc",
	}), baseOptions())

	assert.Equal(t, "MKL", got["BLAS"])
	assert.Contains(t, got, "USE_GLOG")
	assert.Empty(t, got["USE_GLOG"])
	assert.Equal(t, "/opt/cuda/bin/nvcc", got["CUDA_NVCC_EXECUTABLE"])
	for _, key := range []string{"USE_REDIS", "USE_GFLAGS", "WERROR"} {
		assert.NotContains(t, got, key)
	}
}

func TestResolve_DerivedFlags(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		key  string
		want string
	}{
		{name: "fbgemm default", key: "USE_FBGEMM", want: "ON"},
		{name: "fbgemm NO_FBGEMM", env: map[string]string{"NO_FBGEMM": "1"}, key: "USE_FBGEMM", want: "OFF"},
		{name: "fbgemm negative", env: map[string]string{"USE_FBGEMM": "off"}, key: "USE_FBGEMM", want: "OFF"},
		{name: "namedtensor enabled", env: map[string]string{"USE_NAMEDTENSOR": "1"}, key: "NAMEDTENSOR_ENABLED", want: "ON"},
		{name: "namedtensor negated opt-out", env: map[string]string{"NO_NAMEDTENSOR": "0"}, key: "NAMEDTENSOR_ENABLED", want: "ON"},
		{name: "caffe2 ops disabled", env: map[string]string{"BUILD_CAFFE2_OPS": "NO"}, key: "BUILD_CAFFE2_OPS", want: "OFF"},
		{name: "static cuda", env: map[string]string{"USE_CUDA_STATIC_LINK": "true"}, key: "CAFFE2_STATIC_LINK_CUDA", want: "ON"},
		{name: "tests disabled", env: map[string]string{"BUILD_TEST": "0"}, key: "INSTALL_TEST", want: "OFF"},
		{name: "tests unrecognized value", env: map[string]string{"BUILD_TEST": "maybe"}, key: "BUILD_TEST", want: "ON"},
		{name: "env default override", env: map[string]string{"BUILD_SHARED_LIBS": "OFF"}, key: "BUILD_SHARED_LIBS", want: "OFF"},
		{name: "prefix path from env", env: map[string]string{"CMAKE_PREFIX_PATH": "/opt/deps"}, key: "CMAKE_PREFIX_PATH", want: "/opt/deps"},
		{name: "compiler flags", env: map[string]string{"CFLAGS": "-O2", "CPPFLAGS": "-DNDEBUG"}, key: "CMAKE_CXX_FLAGS", want: "-O2 -DNDEBUG"},
		{name: "linker flags", env: map[string]string{"LDFLAGS": "-Wl,--as-needed"}, key: "CMAKE_SHARED_LINKER_FLAGS", want: "-Wl,--as-needed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveMap(baseConfig(tt.env), baseOptions())
			assert.Equal(t, tt.want, got[tt.key])
		})
	}
}

func TestResolve_Capabilities(t *testing.T) {
	cfg := baseConfig(nil)
	cfg.Capabilities = domain.Capabilities{
		UseCUDA:            true,
		UseNCCL:            true,
		UseSystemNCCL:      true,
		NCCLRootDir:        "/opt/nccl",
		NCCLIncludeDir:     "/opt/nccl/include",
		NCCLSystemLib:      "/opt/nccl/lib/libnccl.so",
		UseDistributed:     true,
		UseGlooIBVerbs:     true,
		UseMKLDNN:          true,
		UseNumPy:           true,
		NumPyIncludeDir:    "/site/numpy/core/include",
		PythonExecutable:   "/usr/bin/python3",
		PythonSitePackages: "/site",
	}

	got := resolveMap(cfg, baseOptions())

	assert.Equal(t, "ON", got["USE_CUDA"])
	assert.Equal(t, "ON", got["NCCL_EXTERNAL"])
	assert.Equal(t, "ON", got["USE_SYSTEM_NCCL"])
	assert.Equal(t, "/opt/nccl/include", got["NCCL_INCLUDE_DIR"])
	assert.Equal(t, "/opt/nccl", got["NCCL_ROOT_DIR"])
	assert.Equal(t, "/opt/nccl/lib/libnccl.so", got["NCCL_SYSTEM_LIB"])
	assert.Equal(t, "1", got["USE_IBVERBS"])
	assert.Equal(t, "1", got["USE_GLOO_IBVERBS"])
	assert.Equal(t, "ON", got["MKLDNN_ENABLE_CONCURRENT_EXEC"])
	assert.Equal(t, "/site/numpy/core/include", got["NUMPY_INCLUDE_DIR"])
	assert.Equal(t, "/usr/bin/python3", got["PYTHON_EXECUTABLE"])
	assert.Equal(t, "/site", got["CMAKE_PREFIX_PATH"])
}

func TestResolve_AbsentCapabilityPaths(t *testing.T) {
	got := resolveMap(baseConfig(nil), domain.BuildOptions{})

	for _, key := range []string{
		"NUMPY_INCLUDE_DIR", "NCCL_INCLUDE_DIR", "NCCL_ROOT_DIR", "NCCL_SYSTEM_LIB",
		"PYTHON_EXECUTABLE", "PYTHON_LIBRARY", "PYTHON_INCLUDE_DIR", "TORCH_BUILD_VERSION",
		"CMAKE_PREFIX_PATH", "USE_IBVERBS", "MKLDNN_ENABLE_CONCURRENT_EXEC", "MSVC_Z7_OVERRIDE",
	} {
		assert.NotContains(t, got, key)
	}
}

func TestResolve_WindowsPaths(t *testing.T) {
	cfg := baseConfig(map[string]string{"CFLAGS": "/O2"})
	cfg.Platform = windows
	cfg.InstallDir = `C:\src\torch`
	cfg.Capabilities.PythonExecutable = `C:\Python37\python.exe`
	cfg.Capabilities.PythonSitePackages = `C:\Python37\Lib\site-packages`
	opts := baseOptions()
	opts.PythonLibrary = `C:\Python37\libs\python37.lib`

	ps := params.Resolve(cfg, opts)
	for _, p := range ps {
		if p.Value.Kind() == domain.KindPath {
			assert.NotContains(t, p.Value.Text(), `\`, p.Key)
		}
	}

	got := resolveMap(cfg, opts)
	assert.Equal(t, "C:/src/torch", got["CMAKE_INSTALL_PREFIX"])
	assert.Equal(t, "C:/Python37/python.exe", got["PYTHON_EXECUTABLE"])
	assert.Equal(t, "C:/Python37/Lib/site-packages", got["CMAKE_PREFIX_PATH"])
	assert.Equal(t, "ON", got["MSVC_Z7_OVERRIDE"])
	assert.Equal(t, "/O2  /EHa", got["CMAKE_C_FLAGS"])
}

func TestResolve_ExtraDefines(t *testing.T) {
	cfg := baseConfig(nil)
	cfg.ExtraDefines = map[string]string{
		"CMAKE_VERBOSE_MAKEFILE": "ON",
		"USE_LMDB":               "ON",
	}

	got := resolveMap(cfg, baseOptions())
	assert.Equal(t, "ON", got["CMAKE_VERBOSE_MAKEFILE"])
	assert.Equal(t, "ON", got["USE_LMDB"])
}

func TestResolve_DarwinCCacheWrapper(t *testing.T) {
	wrapper := t.TempDir()

	cfg := baseConfig(nil)
	cfg.Platform = darwin
	cfg.CCacheWrapper = wrapper
	cfg.ExtraDefines = map[string]string{"CMAKE_C_COMPILER": "clang"}

	got := resolveMap(cfg, baseOptions())
	assert.Equal(t, wrapper+"/gcc", got["CMAKE_C_COMPILER"])
	assert.Equal(t, wrapper+"/g++", got["CMAKE_CXX_COMPILER"])

	cfg.CCacheWrapper = wrapper + "/missing"
	got = resolveMap(cfg, baseOptions())
	assert.Equal(t, "clang", got["CMAKE_C_COMPILER"])
	assert.NotContains(t, got, "CMAKE_CXX_COMPILER")

	cfg.Platform = linux
	cfg.CCacheWrapper = wrapper
	got = resolveMap(cfg, baseOptions())
	assert.NotContains(t, got, "CMAKE_CXX_COMPILER")
}

func TestGeneratorFlags(t *testing.T) {
	x86 := windows
	x86.Is64Bit = false

	tests := []struct {
		name     string
		platform domain.Platform
		ninja    bool
		want     []string
	}{
		{name: "ninja", platform: linux, ninja: true, want: []string{"-GNinja"}},
		{name: "ninja on windows", platform: windows, ninja: true, want: []string{"-GNinja"}},
		{name: "visual studio x64", platform: windows, want: []string{"-GVisual Studio 15 2017", "-Ax64", "-Thost=x64"}},
		{name: "visual studio x86", platform: x86, want: []string{"-GVisual Studio 15 2017"}},
		{name: "default generator", platform: linux},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &domain.RunConfig{Platform: tt.platform, UseNinja: tt.ninja}
			assert.Equal(t, tt.want, params.GeneratorFlags(cfg))
		})
	}
}

func TestConfigureArgs(t *testing.T) {
	cfg := baseConfig(nil)
	cfg.UseNinja = true

	args := params.ConfigureArgs(cfg, params.Resolve(cfg, baseOptions()))

	require.GreaterOrEqual(t, len(args), 3)
	assert.Equal(t, "cmake", args[0])
	assert.Equal(t, "-GNinja", args[1])
	assert.Equal(t, "/src", args[len(args)-1])
	for _, a := range args[2 : len(args)-1] {
		assert.True(t, strings.HasPrefix(a, "-D"), a)
	}
}
