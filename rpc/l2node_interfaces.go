package rpc

import (
	"context"

	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/merkletrees"
	"github.com/0xPolygon/cdk-l2node/worldstate"
	"github.com/ethereum/go-ethereum/common"
)

type WorldStater interface {
	Status() worldstate.Status
	SyncImmediate(ctx context.Context) error
	SyncImmediateTo(ctx context.Context, minBlockNumber uint64) error
	GetLatest() merkletrees.MerkleTreeOperations
	GetCommitted() merkletrees.MerkleTreeOperations
}

type TxAdder interface {
	AddTxs(ctx context.Context, txs []l2block.Tx) ([]common.Hash, error)
}

// BlockArchiver serves the blocks already applied by the node
type BlockArchiver interface {
	GetBlockNumber(ctx context.Context) (uint64, error)
	GetBlocks(ctx context.Context, from uint64, limit int) ([]l2block.L2Block, error)
}
