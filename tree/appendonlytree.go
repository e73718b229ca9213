package tree

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/cdk-l2node/db"
	"github.com/0xPolygon/cdk-l2node/tree/types"
	"github.com/ethereum/go-ethereum/common"
)

// AppendOnlyTree is a tree where leaves are added sequentially (by index)
type AppendOnlyTree struct {
	*Tree
	lastLeftCache [types.DefaultHeight]common.Hash
	nextIndex     uint32
	root          common.Hash
	position      uint64
}

// NewAppendOnlyTree creates a AppendOnlyTree and loads its state from q.
func NewAppendOnlyTree(q db.Querier, dbPrefix string) (*AppendOnlyTree, error) {
	at := &AppendOnlyTree{Tree: newTree(dbPrefix)}
	if err := at.Reload(q); err != nil {
		return nil, err
	}
	return at, nil
}

// Info returns the in-memory state, which includes leaves added in
// transactions not committed yet.
func (t *AppendOnlyTree) Info() types.Info {
	return types.Info{Root: t.root, NextIndex: t.nextIndex}
}

// AppendLeaves adds the leaves after the last one added and stores a root
// checkpoint. It returns a function that must be called to restore the
// in-memory state if the changes done through q are discarded.
func (t *AppendOnlyTree) AppendLeaves(q db.Querier, leaves []common.Hash) (func(), error) {
	// Sanity check
	if len(leaves) == 0 {
		return func() {}, nil
	}
	if err := checkCapacity(t.nextIndex, len(leaves)); err != nil {
		return func() {}, err
	}

	backupIndex := t.nextIndex
	backupRoot := t.root
	backupPosition := t.position
	backupCache := t.lastLeftCache
	rollback := func() {
		t.nextIndex = backupIndex
		t.root = backupRoot
		t.position = backupPosition
		t.lastLeftCache = backupCache
	}

	for _, leaf := range leaves {
		if err := t.addLeaf(q, types.Leaf{Index: t.nextIndex, Hash: leaf}); err != nil {
			return rollback, err
		}
	}

	t.position++
	if err := t.storeRoot(q, types.Root{Position: t.position, Hash: t.root, NextIndex: t.nextIndex}); err != nil {
		return rollback, fmt.Errorf("failed to store root: %w", err)
	}
	return rollback, nil
}

func (t *AppendOnlyTree) addLeaf(q db.Querier, leaf types.Leaf) error {
	// Calculate new tree nodes
	currentChildHash := leaf.Hash
	newNodes := make([]types.TreeNode, 0, types.DefaultHeight)
	for h := uint8(0); h < types.DefaultHeight; h++ {
		var parent types.TreeNode
		if leaf.Index&(1<<h) > 0 {
			// Add child to the right
			parent = newTreeNode(t.lastLeftCache[h], currentChildHash)
		} else {
			// Add child to the left
			parent = newTreeNode(currentChildHash, t.zeroHashes[h])
			t.lastLeftCache[h] = currentChildHash
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
	t.nextIndex++
	return nil
}

// Reload discards the in-memory state and reads it again from q.
func (t *AppendOnlyTree) Reload(q db.Querier) error {
	lastRoot, err := t.LastRoot(q)
	if errors.Is(err, db.ErrNotFound) {
		t.nextIndex = 0
		t.position = 0
		t.root = t.EmptyRoot()
		t.lastLeftCache = [types.DefaultHeight]common.Hash{}
		return nil
	}
	if err != nil {
		return err
	}
	t.nextIndex = lastRoot.NextIndex
	t.position = lastRoot.Position
	t.root = lastRoot.Hash
	return t.initLastLeftCache(q)
}

// initLastLeftCache rebuilds the left siblings of the path of the next leaf,
// which are the only ones addLeaf reads before overwriting.
func (t *AppendOnlyTree) initLastLeftCache(q db.Querier) error {
	siblings, err := t.getSiblings(q, t.nextIndex, t.root)
	if err != nil {
		return fmt.Errorf("error rebuilding the cache of the tree %s at index %d: %w", t.rhtTable, t.nextIndex, err)
	}
	t.lastLeftCache = siblings
	return nil
}
