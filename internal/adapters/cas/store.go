// Package cas persists configure records inside build directories.
package cas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StateStore = (*Store)(nil)

// Store implements ports.StateStore with one JSON file per build directory.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Path returns the state file location for buildDir.
func Path(buildDir string) string {
	return filepath.Join(filepath.Clean(buildDir), domain.StateFile)
}

// Fingerprint returns a stable hash of a configure argument vector.
func Fingerprint(args []string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(args, "\x00")))
}

// Get retrieves the record for buildDir.
func (s *Store) Get(buildDir string) (*domain.ConfigureRecord, error) {
	path := Path(buildDir)

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read configure state"), "path", path)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var record domain.ConfigureRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to unmarshal configure state"), "path", path)
	}
	return &record, nil
}

// Put stores the record in its build directory. A missing fingerprint is computed from Args.
func (s *Store) Put(record domain.ConfigureRecord) error {
	if record.BuildDir == "" {
		return domain.ErrInvalidBuildDir
	}
	if record.Fingerprint == "" && len(record.Args) > 0 {
		record.Fingerprint = Fingerprint(record.Args)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal configure state")
	}

	path := Path(record.BuildDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create build directory"), "path", path)
	}

	tmp := path + ".tmp"
	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write configure state"), "path", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return zerr.With(zerr.Wrap(err, "failed to replace configure state"), "path", path)
	}
	return nil
}
