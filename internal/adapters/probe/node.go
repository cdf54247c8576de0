package probe

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/torchbuild/internal/adapters/logger"
	"go.trai.ch/torchbuild/internal/adapters/shell"
	"go.trai.ch/torchbuild/internal/core/ports"
)

// NodeID is the unique identifier for the capability probe Graft node.
const NodeID graft.ID = "adapter.capability_probe"

func init() {
	graft.Register(graft.Node[ports.CapabilityProbe]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.CapabilityProbe, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(executor, log), nil
		},
	})
}
