// Package config provides the settings loader for torchbuild.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
	logger   ports.Logger
}

// NewLoader creates a FileConfigLoader reading DefaultFilename.
func NewLoader(logger ports.Logger) *FileConfigLoader {
	return &FileConfigLoader{
		Filename: DefaultFilename,
		logger:   logger,
	}
}

// Load reads the settings from the given directory.
// A missing file yields zero Settings.
func (l *FileConfigLoader) Load(dir string) (domain.Settings, error) {
	path := filepath.Join(dir, l.Filename)
	settings, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("no settings file at " + path)
		return domain.Settings{}, nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	l.logger.Debug("loaded settings from " + path)
	return settings, nil
}

// Load reads a settings file from the given path.
func Load(path string) (domain.Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return domain.Settings{}, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	file, err := Parse(data)
	if err != nil {
		return domain.Settings{}, zerr.With(err, "path", path)
	}
	return file.Settings(), nil
}

// Parse decodes and validates settings file contents. Unknown fields are rejected.
func Parse(data []byte) (File, error) {
	var file File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return File{}, zerr.Wrap(errors.Join(domain.ErrInvalidConfig, err), "failed to parse config file")
	}

	for key := range file.Defines {
		if key == "" || strings.ContainsAny(key, "= \t") {
			return File{}, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid define name"), "define", key)
		}
	}
	return file, nil
}

// Settings converts the file into domain settings.
func (f File) Settings() domain.Settings {
	return domain.Settings{
		Version:          f.Version,
		BuildDir:         f.BuildDir,
		PythonLibrary:    f.PythonLibrary,
		PythonIncludeDir: f.PythonIncludeDir,
		BuildPython:      f.BuildPython,
		Defines:          f.Defines,
	}
}
