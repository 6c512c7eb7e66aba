package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the filesystem Graft node.
const NodeID graft.ID = "adapter.fs"

func init() {
	graft.Register(graft.Node[ports.FS]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.FS, error) {
			return NewLocal(), nil
		},
	})
}
