package tree

import (
	"errors"

	"github.com/0xPolygon/cdk-l2node/db"
	"github.com/0xPolygon/cdk-l2node/tree/types"
	"github.com/ethereum/go-ethereum/common"
)

// UpdatableTree is a tree where any leaf can be set at any time.
type UpdatableTree struct {
	*Tree
	root      common.Hash
	nextIndex uint32
	position  uint64
}

// NewUpdatableTree creates an UpdatableTree and loads its state from q.
func NewUpdatableTree(q db.Querier, dbPrefix string) (*UpdatableTree, error) {
	ut := &UpdatableTree{Tree: newTree(dbPrefix)}
	if err := ut.Reload(q); err != nil {
		return nil, err
	}
	return ut, nil
}

// Info returns the in-memory state. NextIndex is one past the highest index
// ever written.
func (t *UpdatableTree) Info() types.Info {
	return types.Info{Root: t.root, NextIndex: t.nextIndex}
}

// UpsertLeaves sets every leaf and stores a root checkpoint. It returns a
// function that must be called to restore the in-memory state if the changes
// done through q are discarded.
func (t *UpdatableTree) UpsertLeaves(q db.Querier, leaves []types.Leaf) (func(), error) {
	if len(leaves) == 0 {
		return func() {}, nil
	}
	rootBackup := t.root
	indexBackup := t.nextIndex
	positionBackup := t.position
	rollback := func() {
		t.root = rootBackup
		t.nextIndex = indexBackup
		t.position = positionBackup
	}

	for _, l := range leaves {
		if err := t.upsertLeaf(q, l); err != nil {
			return rollback, err
		}
	}

	t.position++
	if err := t.storeRoot(q, types.Root{Position: t.position, Hash: t.root, NextIndex: t.nextIndex}); err != nil {
		return rollback, err
	}
	return rollback, nil
}

func (t *UpdatableTree) upsertLeaf(q db.Querier, leaf types.Leaf) error {
	siblings, err := t.getSiblings(q, leaf.Index, t.root)
	if err != nil {
		return err
	}
	currentChildHash := leaf.Hash
	newNodes := make([]types.TreeNode, 0, types.DefaultHeight)
	for h := uint8(0); h < types.DefaultHeight; h++ {
		var parent types.TreeNode
		if leaf.Index&(1<<h) > 0 {
			// Add child to the right
			parent = newTreeNode(siblings[h], currentChildHash)
		} else {
			// Add child to the left
			parent = newTreeNode(currentChildHash, siblings[h])
		}
		currentChildHash = parent.Hash
		newNodes = append(newNodes, parent)
	}

	if err := t.storeNodes(q, newNodes); err != nil {
		return err
	}
	if err := t.storeLeaf(q, leaf); err != nil {
		return err
	}
	t.root = currentChildHash
	if leaf.Index >= t.nextIndex {
		t.nextIndex = leaf.Index + 1
	}
	return nil
}

// LeafValue returns the value at index, unset leaves are zero.
func (t *UpdatableTree) LeafValue(q db.Querier, index uint32) (common.Hash, error) {
	v, err := t.Tree.LeafValue(q, index)
	if errors.Is(err, db.ErrNotFound) {
		return common.Hash{}, nil
	}
	return v, err
}

// Reload discards the in-memory state and reads it again from q.
func (t *UpdatableTree) Reload(q db.Querier) error {
	lastRoot, err := t.LastRoot(q)
	if errors.Is(err, db.ErrNotFound) {
		t.root = t.EmptyRoot()
		t.nextIndex = 0
		t.position = 0
		return nil
	}
	if err != nil {
		return err
	}
	t.root = lastRoot.Hash
	t.nextIndex = lastRoot.NextIndex
	t.position = lastRoot.Position
	return nil
}
