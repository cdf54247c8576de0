package msvc

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/torchbuild/internal/adapters/shell"
	"go.trai.ch/torchbuild/internal/core/domain"
	"go.trai.ch/torchbuild/internal/core/ports"
)

// NodeID is the unique identifier for the compiler environment probe Graft node.
const NodeID graft.ID = "adapter.compiler_env"

func init() {
	graft.Register(graft.Node[ports.CompilerEnvProbe]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.CompilerEnvProbe, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return New(executor, domain.ParseEnvironment(os.Environ())), nil
		},
	})
}
