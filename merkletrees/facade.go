package merkletrees

import (
	"context"
	"errors"

	"github.com/0xPolygon/cdk-l2node/l2block"
	treetypes "github.com/0xPolygon/cdk-l2node/tree/types"
	"github.com/ethereum/go-ethereum/common"
)

var ErrReadOnlyView = errors.New("the committed view of the world state is read only")

// MerkleTreeOperations is the view of the world state used by the rest of the
// node. Depending on how it was obtained it reads the latest state (staged
// changes included) or only the committed one.
type MerkleTreeOperations interface {
	GetTreeInfo(ctx context.Context, id l2block.TreeID) (TreeInfo, error)
	GetSnapshots(ctx context.Context) (l2block.Snapshots, error)
	GetSiblingPath(ctx context.Context, id l2block.TreeID, index uint32) (treetypes.Proof, error)
	FindLeafIndex(ctx context.Context, id l2block.TreeID, value common.Hash) (uint32, error)
	GetLeafValue(ctx context.Context, id l2block.TreeID, index uint32) (common.Hash, error)
	AppendLeaves(ctx context.Context, id l2block.TreeID, leaves []common.Hash) error
	UpdateLeaf(ctx context.Context, id l2block.TreeID, value common.Hash, index uint32) error
	AppendBlockHash(ctx context.Context, number uint64) error
	StageBlock(
		ctx context.Context, number uint64, nullifiers, commitments []common.Hash,
	) (start l2block.Snapshots, end l2block.Snapshots, err error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	HandleL2Block(ctx context.Context, block l2block.L2Block) error
}

// Facade binds a MerkleTrees to one of its views.
type Facade struct {
	trees              *MerkleTrees
	includeUncommitted bool
}

// NewFacade returns a view of trees. Write operations fail on the committed
// view.
func NewFacade(trees *MerkleTrees, includeUncommitted bool) *Facade {
	return &Facade{trees: trees, includeUncommitted: includeUncommitted}
}

func (f *Facade) GetTreeInfo(ctx context.Context, id l2block.TreeID) (TreeInfo, error) {
	return f.trees.GetTreeInfo(ctx, id, f.includeUncommitted)
}

func (f *Facade) GetSnapshots(ctx context.Context) (l2block.Snapshots, error) {
	return f.trees.GetSnapshots(ctx, f.includeUncommitted)
}

func (f *Facade) GetSiblingPath(ctx context.Context, id l2block.TreeID, index uint32) (treetypes.Proof, error) {
	return f.trees.GetSiblingPath(ctx, id, index, f.includeUncommitted)
}

func (f *Facade) FindLeafIndex(ctx context.Context, id l2block.TreeID, value common.Hash) (uint32, error) {
	return f.trees.FindLeafIndex(ctx, id, value, f.includeUncommitted)
}

func (f *Facade) GetLeafValue(ctx context.Context, id l2block.TreeID, index uint32) (common.Hash, error) {
	return f.trees.GetLeafValue(ctx, id, index, f.includeUncommitted)
}

func (f *Facade) AppendLeaves(ctx context.Context, id l2block.TreeID, leaves []common.Hash) error {
	if !f.includeUncommitted {
		return ErrReadOnlyView
	}
	return f.trees.AppendLeaves(ctx, id, leaves)
}

func (f *Facade) UpdateLeaf(ctx context.Context, id l2block.TreeID, value common.Hash, index uint32) error {
	if !f.includeUncommitted {
		return ErrReadOnlyView
	}
	return f.trees.UpdateLeaf(ctx, id, value, index)
}

func (f *Facade) AppendBlockHash(ctx context.Context, number uint64) error {
	if !f.includeUncommitted {
		return ErrReadOnlyView
	}
	return f.trees.AppendBlockHash(ctx, number)
}

func (f *Facade) StageBlock(
	ctx context.Context, number uint64, nullifiers, commitments []common.Hash,
) (l2block.Snapshots, l2block.Snapshots, error) {
	if !f.includeUncommitted {
		return l2block.Snapshots{}, l2block.Snapshots{}, ErrReadOnlyView
	}
	return f.trees.StageBlock(ctx, number, nullifiers, commitments)
}

func (f *Facade) Commit(ctx context.Context) error {
	if !f.includeUncommitted {
		return ErrReadOnlyView
	}
	return f.trees.Commit(ctx)
}

func (f *Facade) Rollback(ctx context.Context) error {
	if !f.includeUncommitted {
		return ErrReadOnlyView
	}
	return f.trees.Rollback(ctx)
}

func (f *Facade) HandleL2Block(ctx context.Context, block l2block.L2Block) error {
	if !f.includeUncommitted {
		return ErrReadOnlyView
	}
	return f.trees.HandleL2Block(ctx, block)
}
