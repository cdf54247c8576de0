package ports

import "go.trai.ch/torchbuild/internal/core/domain"

// ConfigLoader defines the interface for loading project settings.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the settings file from the given directory.
	// A missing file yields zero Settings and no error.
	Load(dir string) (domain.Settings, error)
}
