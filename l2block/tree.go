package l2block

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// TreeID identifies one of the trees making up the world state.
type TreeID uint8

const (
	ContractTree TreeID = iota
	NullifierTree
	PrivateDataTree
	PublicDataTree
	L1ToL2MessageTree
	BlocksTree

	// NumTrees is the amount of trees tracked by the world state.
	NumTrees = int(BlocksTree) + 1
)

var treeNames = [NumTrees]string{
	"contract",
	"nullifier",
	"privatedata",
	"publicdata",
	"l1tol2message",
	"blocks",
}

// AllTrees lists every tree in a stable order.
var AllTrees = [NumTrees]TreeID{
	ContractTree, NullifierTree, PrivateDataTree, PublicDataTree, L1ToL2MessageTree, BlocksTree,
}

func (t TreeID) String() string {
	if int(t) >= NumTrees {
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
	return treeNames[t]
}

// IsValid reports whether t names a known tree.
func (t TreeID) IsValid() bool {
	return int(t) < NumTrees
}

// ParseTreeID converts a tree name, as returned by TreeID.String, back into a TreeID.
func ParseTreeID(name string) (TreeID, error) {
	for i, n := range treeNames {
		if strings.EqualFold(n, name) {
			return TreeID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tree %q", name)
}

// TreeSnapshot is the state of a tree at a given point: its root and the
// index the next appended leaf will take.
type TreeSnapshot struct {
	Root                   common.Hash `json:"root"`
	NextAvailableLeafIndex uint32      `json:"nextAvailableLeafIndex"`
}

// Snapshots holds one TreeSnapshot per tree, indexed by TreeID.
type Snapshots [NumTrees]TreeSnapshot

// Get returns the snapshot of the given tree.
func (s Snapshots) Get(id TreeID) TreeSnapshot {
	return s[id]
}
