package types

import "github.com/ethereum/go-ethereum/common"

const (
	DefaultHeight uint8 = 32
)

type Leaf struct {
	Index uint32
	Hash  common.Hash
}

// Root is a checkpoint of a tree, stored every time a batch of leaves is added
// or updated. Position increases by one per checkpoint.
type Root struct {
	Position  uint64      `meddler:"position"`
	Hash      common.Hash `meddler:"hash,hash"`
	NextIndex uint32      `meddler:"next_index"`
}

type TreeNode struct {
	Hash  common.Hash `meddler:"hash,hash"`
	Left  common.Hash `meddler:"left_hash,hash"`
	Right common.Hash `meddler:"right_hash,hash"`
}

type Proof [DefaultHeight]common.Hash

// Info is the observable state of a tree.
type Info struct {
	Root      common.Hash
	NextIndex uint32
}
