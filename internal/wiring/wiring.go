// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/torchbuild/internal/adapters/cas"
	_ "go.trai.ch/torchbuild/internal/adapters/config"
	_ "go.trai.ch/torchbuild/internal/adapters/logger"
	_ "go.trai.ch/torchbuild/internal/adapters/msvc"
	_ "go.trai.ch/torchbuild/internal/adapters/probe"
	_ "go.trai.ch/torchbuild/internal/adapters/shell"
	_ "go.trai.ch/torchbuild/internal/adapters/telemetry"
	// Register app nodes.
	_ "go.trai.ch/torchbuild/internal/app"
)
