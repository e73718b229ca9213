package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/cdk-l2node/db"
	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/0xPolygon/cdk-l2node/merkletrees"
	"github.com/0xPolygon/cdk-l2node/rpc/types"
	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	// L2NODE is the namespace of the l2node service
	L2NODE    = "l2node"
	meterName = "github.com/0xPolygon/cdk-l2node/rpc"

	// MaxBlocksPerRequest caps the blocks returned by a single l2node_getBlocks call
	MaxBlocksPerRequest = 100
)

var (
	ErrNotAvailable = errors.New("not available on this node")
)

// L2NodeEndpoints contains implementations for the "l2node" RPC endpoints
type L2NodeEndpoints struct {
	logger       *log.Logger
	meter        metric.Meter
	readTimeout  time.Duration
	writeTimeout time.Duration
	worldState   WorldStater
	txPool       TxAdder
	archive      BlockArchiver
}

// NewL2NodeEndpoints returns L2NodeEndpoints. txPool and archive are optional,
// the endpoints using them fail when they are nil.
func NewL2NodeEndpoints(
	logger *log.Logger,
	writeTimeout time.Duration,
	readTimeout time.Duration,
	worldState WorldStater,
	txPool TxAdder,
	archive BlockArchiver,
) *L2NodeEndpoints {
	return &L2NodeEndpoints{
		logger:       logger,
		meter:        otel.Meter(meterName),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
		worldState:   worldState,
		txPool:       txPool,
		archive:      archive,
	}
}

func (n *L2NodeEndpoints) count(ctx context.Context, name string) {
	c, merr := n.meter.Int64Counter(name)
	if merr != nil {
		n.logger.Warnf("failed to create %s counter: %s", name, merr)
		return
	}
	c.Add(ctx, 1)
}

// Status returns the last block applied to the world state and the state of the synchroniser
func (n *L2NodeEndpoints) Status() (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), n.readTimeout)
	defer cancel()
	n.count(ctx, "status")

	s := n.worldState.Status()
	return types.Status{
		SyncedToL2Block: s.SyncedToL2Block,
		State:           s.State.String(),
	}, nil
}

// SyncImmediate applies the blocks available right now. If target is given,
// it fails unless the world state reaches that block.
func (n *L2NodeEndpoints) SyncImmediate(target *uint64) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), n.writeTimeout)
	defer cancel()
	n.count(ctx, "sync_immediate")

	var err error
	if target != nil {
		err = n.worldState.SyncImmediateTo(ctx, *target)
	} else {
		err = n.worldState.SyncImmediate(ctx)
	}
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to sync: %s", err))
	}
	return n.worldState.Status().SyncedToL2Block, nil
}

// GetTreeRoot returns the root of a tree, from the committed state or including the staged changes
func (n *L2NodeEndpoints) GetTreeRoot(treeName string, committed bool) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), n.readTimeout)
	defer cancel()
	n.count(ctx, "get_tree_root")

	id, err := l2block.ParseTreeID(treeName)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, err.Error())
	}
	info, err := n.view(committed).GetTreeInfo(ctx, id)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to get the root of tree %s: %s", id, err))
	}
	return types.TreeRoot{Tree: id.String(), Root: info.Root, Size: info.Size}, nil
}

// FindLeafIndex returns the index of the first leaf of the tree holding value
func (n *L2NodeEndpoints) FindLeafIndex(treeName string, value common.Hash, committed bool) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), n.readTimeout)
	defer cancel()
	n.count(ctx, "find_leaf_index")

	id, err := l2block.ParseTreeID(treeName)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, err.Error())
	}
	index, err := n.view(committed).FindLeafIndex(ctx, id, value)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to find leaf %s in tree %s: %s", value.Hex(), id, err))
	}
	return index, nil
}

// SendTxs adds txs to the pool and returns the hashes of the accepted ones
func (n *L2NodeEndpoints) SendTxs(txs []l2block.Tx) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), n.writeTimeout)
	defer cancel()
	n.count(ctx, "send_txs")

	if n.txPool == nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("tx pool %s", ErrNotAvailable))
	}
	hashes, err := n.txPool.AddTxs(ctx, txs)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to add txs: %s", err))
	}
	return hashes, nil
}

// GetBlockNumber returns the number of the last block applied by the node
func (n *L2NodeEndpoints) GetBlockNumber() (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), n.readTimeout)
	defer cancel()
	n.count(ctx, "get_block_number")

	if n.archive == nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("block archive %s", ErrNotAvailable))
	}
	num, err := n.archive.GetBlockNumber(ctx)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to get block number: %s", err))
	}
	return num, nil
}

// GetBlocks returns up to limit consecutive blocks starting at from
func (n *L2NodeEndpoints) GetBlocks(from uint64, limit int) (interface{}, rpc.Error) {
	ctx, cancel := context.WithTimeout(context.Background(), n.readTimeout)
	defer cancel()
	n.count(ctx, "get_blocks")

	if n.archive == nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("block archive %s", ErrNotAvailable))
	}
	if limit <= 0 {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("invalid limit %d", limit))
	}
	limit = min(limit, MaxBlocksPerRequest)
	blocks, err := n.archive.GetBlocks(ctx, from, limit)
	if err != nil {
		return nil, rpc.NewRPCError(rpc.DefaultErrorCode, fmt.Sprintf("failed to get blocks from %d: %s", from, err))
	}
	return blocks, nil
}

func (n *L2NodeEndpoints) view(committed bool) merkletrees.MerkleTreeOperations {
	if committed {
		return n.worldState.GetCommitted()
	}
	return n.worldState.GetLatest()
}
