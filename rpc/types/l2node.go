package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// Status is the sync status of a node
type Status struct {
	SyncedToL2Block uint64 `json:"syncedToL2Block"`
	State           string `json:"state"`
}

// TreeRoot is the root and size of one of the trees of the world state
type TreeRoot struct {
	Tree string      `json:"tree"`
	Root common.Hash `json:"root"`
	Size uint32      `json:"size"`
}
