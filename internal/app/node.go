package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/torchbuild/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/torchbuild/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/torchbuild/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/torchbuild/internal/adapters/msvc"      //nolint:depguard // Wired in app layer
	"go.trai.ch/torchbuild/internal/adapters/probe"     //nolint:depguard // Wired in app layer
	"go.trai.ch/torchbuild/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/torchbuild/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/torchbuild/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			shell.NodeID,
			logger.NodeID,
			probe.NodeID,
			msvc.NodeID,
			cas.NodeID,
			telemetry.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:    app,
				Logger: log,
			}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	capProbe, err := graft.Dep[ports.CapabilityProbe](ctx)
	if err != nil {
		return nil, err
	}

	compilerEnv, err := graft.Dep[ports.CompilerEnvProbe](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.StateStore](ctx)
	if err != nil {
		return nil, err
	}

	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, executor, log, capProbe, compilerEnv, store, tel), nil
}
