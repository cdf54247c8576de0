// Package staleness decides whether a build directory needs a fresh configure.
package staleness

import (
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/zerr"
)

// NeedsConfigure reports whether the configure step must run for buildDir.
//
// When force is set an existing generator cache is deleted first. The result is true
// when the cache is missing, or when useNinja is set and the Ninja manifest is missing.
func NeedsConfigure(buildDir string, useNinja, force bool) (bool, error) {
	cache := domain.CacheFilePath(buildDir)

	if force {
		if err := os.Remove(cache); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return false, zerr.With(zerr.Wrap(err, "failed to remove generator cache"), "path", cache)
		}
	}

	ok, err := exists(cache)
	if err != nil || !ok {
		return true, err
	}

	if useNinja {
		ok, err = exists(domain.ManifestPath(buildDir))
		if err != nil || !ok {
			return true, err
		}
	}
	return false, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, zerr.With(zerr.Wrap(err, "failed to stat build state"), "path", path)
	}
}
