package envsynth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports/mocks"
	"go.trai.ch/torchbuild/internal/engine/envsynth"
	"go.uber.org/mock/gomock"
)

var (
	linux   = domain.Platform{OS: "linux", Arch: "amd64", PathSeparator: '/', Is64Bit: true}
	windows = domain.Platform{OS: "windows", Arch: "amd64", PathSeparator: '\\', Is64Bit: true}
)

func TestSynthesize_NoAccelerators(t *testing.T) {
	base := domain.NewEnvironment(map[string]string{"PATH": "/usr/bin", "HOME": "/home/dev"})
	cfg := &domain.RunConfig{Platform: linux, Env: base}

	env, err := envsynth.New(nil).Synthesize(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, base.Map(), env.Map())
}

func TestSynthesize_CUDAAndCuDNN(t *testing.T) {
	base := domain.NewEnvironment(map[string]string{"CUDA_BIN_PATH": "stale"})
	cfg := &domain.RunConfig{
		Platform: linux,
		Env:      base,
		Capabilities: domain.Capabilities{
			UseCUDA:         true,
			CUDAHome:        "/usr/local/cuda",
			UseCuDNN:        true,
			CuDNNLibrary:    "/usr/lib/libcudnn.so",
			CuDNNIncludeDir: "/usr/include",
		},
	}

	env, err := envsynth.New(nil).Synthesize(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/cuda", env.Get("CUDA_BIN_PATH"))
	assert.Equal(t, "/usr/lib/libcudnn.so", env.Get("CUDNN_LIBRARY"))
	assert.Equal(t, "/usr/include", env.Get("CUDNN_INCLUDE_DIR"))

	// The captured environment is untouched.
	assert.Equal(t, "stale", base.Get("CUDA_BIN_PATH"))
	assert.False(t, base.Has("CUDNN_LIBRARY"))
}

func TestSynthesize_WindowsPathsUseForwardSlashes(t *testing.T) {
	cfg := &domain.RunConfig{
		Platform: windows,
		Capabilities: domain.Capabilities{
			UseCUDA:  true,
			CUDAHome: `C:\CUDA\v10.1`,
		},
	}

	env, err := envsynth.New(nil).Synthesize(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "C:/CUDA/v10.1", env.Get("CUDA_BIN_PATH"))
}

func TestSynthesize_WindowsNinjaCompilerEnv(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	probe := mocks.NewMockCompilerEnvProbe(ctrl)
	probe.EXPECT().CompilerEnv(gomock.Any(), windows).Return(map[string]string{
		"include": `C:\VC\include`,
		"path":    `C:\VC\bin`,
		"lib":     `C:\VC\lib`,
	}, nil)

	cfg := &domain.RunConfig{
		Platform: windows,
		UseNinja: true,
		Env: domain.NewEnvironment(map[string]string{
			"Path": `C:\Windows`,
			"CXX":  "clang-cl",
		}),
	}

	env, err := envsynth.New(probe).Synthesize(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Path":    `C:\Windows`,
		"CXX":     "clang-cl",
		"INCLUDE": `C:\VC\include`,
		"LIB":     `C:\VC\lib`,
		"CC":      "cl",
	}, env.Map())
}

func TestSynthesize_WindowsWithoutNinjaSkipsCompilerEnv(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := &domain.RunConfig{Platform: windows}

	env, err := envsynth.New(mocks.NewMockCompilerEnvProbe(ctrl)).Synthesize(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, env.Has("CC"))
}

func TestSynthesize_CompilerEnvFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	probe := mocks.NewMockCompilerEnvProbe(ctrl)
	probe.EXPECT().CompilerEnv(gomock.Any(), gomock.Any()).Return(nil, errors.New("vswhere not found"))

	cfg := &domain.RunConfig{Platform: windows, UseNinja: true}

	_, err := envsynth.New(probe).Synthesize(context.Background(), cfg)
	require.ErrorIs(t, err, domain.ErrCompilerEnvUnavailable)
}

func TestApply_LaterOverlaysWin(t *testing.T) {
	env, err := envsynth.Apply(domain.Environment{},
		envsynth.Set(map[string]string{"A": "1", "B": "1"}),
		envsynth.Set(map[string]string{"B": "2"}),
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, env.Map())
}

func TestApply_StopsOnError(t *testing.T) {
	boom := errors.New("boom")
	called := false

	_, err := envsynth.Apply(domain.Environment{},
		func(domain.Environment) (domain.Environment, error) { return domain.Environment{}, boom },
		func(e domain.Environment) (domain.Environment, error) {
			called = true
			return e, nil
		},
	)
	require.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestCheckEncoding(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn("Invalid ENV[gh_title] = 66:ff:6f").Times(1)

	env := domain.NewEnvironment(map[string]string{
		"gh_title":  "f\xffo",
		"gh_ok":     "héllo",
		"GH_UPPER":  "\xfe",
		"other_bad": "\xfe",
	})

	envsynth.CheckEncoding(env, logger)
	assert.Equal(t, "f\xffo", env.Get("gh_title"))
}
