package ports

import "go.trai.ch/torchbuild/internal/core/domain"

// StateStore persists the last configure of a build directory.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StateStore interface {
	// Get returns the record for buildDir.
	// Returns nil, nil if not found.
	Get(buildDir string) (*domain.ConfigureRecord, error)

	// Put stores the record under its BuildDir.
	Put(record domain.ConfigureRecord) error
}
