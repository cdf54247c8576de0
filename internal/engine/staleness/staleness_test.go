package staleness_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/torchbuild/internal/engine/staleness"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
}

func TestNeedsConfigure(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		useNinja bool
		want     bool
	}{
		{name: "empty dir", want: true},
		{name: "empty dir with ninja", useNinja: true, want: true},
		{name: "cache only", files: []string{"CMakeCache.txt"}, want: false},
		{name: "cache without manifest", files: []string{"CMakeCache.txt"}, useNinja: true, want: true},
		{name: "cache and manifest", files: []string{"CMakeCache.txt", "build.ninja"}, useNinja: true, want: false},
		{name: "manifest only", files: []string{"build.ninja"}, useNinja: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, dir, f)
			}

			got, err := staleness.NeedsConfigure(dir, tt.useNinja, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNeedsConfigure_ForceDeletesCache(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "CMakeCache.txt")
	touch(t, dir, "build.ninja")

	got, err := staleness.NeedsConfigure(dir, true, true)
	require.NoError(t, err)
	assert.True(t, got)

	assert.NoFileExists(t, filepath.Join(dir, "CMakeCache.txt"))
	assert.FileExists(t, filepath.Join(dir, "build.ninja"))
}

func TestNeedsConfigure_ForceOnEmptyDir(t *testing.T) {
	got, err := staleness.NeedsConfigure(t.TempDir(), false, true)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestNeedsConfigure_MissingBuildDir(t *testing.T) {
	got, err := staleness.NeedsConfigure(filepath.Join(t.TempDir(), "build"), true, true)
	require.NoError(t, err)
	assert.True(t, got)
}
