package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/rpc/types"
	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
)

type L2NodeClientInterface interface {
	Status() (types.Status, error)
	SyncImmediate(target *uint64) (uint64, error)
	GetTreeRoot(tree l2block.TreeID, committed bool) (types.TreeRoot, error)
	FindLeafIndex(tree l2block.TreeID, value common.Hash, committed bool) (*uint32, error)
	SendTxs(txs []l2block.Tx) ([]common.Hash, error)
	GetBlockNumber(ctx context.Context) (uint64, error)
	GetBlocks(ctx context.Context, from uint64, limit int) ([]l2block.L2Block, error)
}

func call(url, method string, result interface{}, params ...interface{}) error {
	response, err := rpc.JSONRPCCall(url, method, params...)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%v %v", response.Error.Code, response.Error.Message)
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(response.Result, result)
}

// Status returns the sync status of the node
func (c *Client) Status() (types.Status, error) {
	var result types.Status
	err := call(c.url, "l2node_status", &result)
	return result, err
}

// SyncImmediate makes the node apply the blocks available right now and
// returns the last applied block. A nil target does not require any block.
func (c *Client) SyncImmediate(target *uint64) (uint64, error) {
	var result uint64
	params := []interface{}{}
	if target != nil {
		params = append(params, *target)
	}
	err := call(c.url, "l2node_syncImmediate", &result, params...)
	return result, err
}

func (c *Client) GetTreeRoot(tree l2block.TreeID, committed bool) (types.TreeRoot, error) {
	var result types.TreeRoot
	err := call(c.url, "l2node_getTreeRoot", &result, tree.String(), committed)
	return result, err
}

// FindLeafIndex returns nil if the value is not in the tree
func (c *Client) FindLeafIndex(tree l2block.TreeID, value common.Hash, committed bool) (*uint32, error) {
	var result *uint32
	err := call(c.url, "l2node_findLeafIndex", &result, tree.String(), value, committed)
	return result, err
}

// SendTxs returns the hashes of the txs accepted by the pool
func (c *Client) SendTxs(txs []l2block.Tx) ([]common.Hash, error) {
	var result []common.Hash
	err := call(c.url, "l2node_sendTxs", &result, txs)
	return result, err
}

// GetBlockNumber returns the last block applied by the node. Together with
// GetBlocks it makes the client an L2 block source for another node.
func (c *Client) GetBlockNumber(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var result uint64
	err := call(c.url, "l2node_getBlockNumber", &result)
	return result, err
}

func (c *Client) GetBlocks(ctx context.Context, from uint64, limit int) ([]l2block.L2Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var result []l2block.L2Block
	if err := call(c.url, "l2node_getBlocks", &result, from, limit); err != nil {
		return nil, fmt.Errorf("error calling l2node_getBlocks from %d: %w", from, err)
	}
	return result, nil
}
