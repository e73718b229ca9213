package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handle func(method string, params []json.RawMessage) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpc.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var params []json.RawMessage
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		_, _ = w.Write([]byte(handle(req.Method, params)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientGetBlocks(t *testing.T) {
	t.Parallel()
	blocks := []l2block.L2Block{
		{Number: 1, ChainID: 31337, Version: 1, NewNullifiers: []common.Hash{common.HexToHash("0x01")}},
		{Number: 2, ChainID: 31337, Version: 1, NewCommitments: []common.Hash{common.HexToHash("0x02")}},
	}
	encoded, err := json.Marshal(blocks)
	require.NoError(t, err)

	srv := newTestServer(t, func(method string, params []json.RawMessage) string {
		switch method {
		case "l2node_getBlockNumber":
			return `{"jsonrpc":"2.0","id":1,"result":2}`
		case "l2node_getBlocks":
			if len(params) != 2 || string(params[0]) != "1" || string(params[1]) != "10" {
				return `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"unexpected params"}}`
			}
			return `{"jsonrpc":"2.0","id":1,"result":` + string(encoded) + `}`
		default:
			return `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`
		}
	})

	c := NewClient(srv.URL)
	ctx := context.Background()
	num, err := c.GetBlockNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), num)

	got, err := c.GetBlocks(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range blocks {
		require.Equal(t, blocks[i].Hash(), got[i].Hash())
	}
	require.Equal(t, blocks[0].NewNullifiers, got[0].NewNullifiers)
	require.Equal(t, blocks[1].NewCommitments, got[1].NewCommitments)

	_, err = c.GetBlocks(ctx, 5, 10)
	require.ErrorContains(t, err, "unexpected params")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.GetBlockNumber(cancelled)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClientSyncImmediate(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, func(method string, params []json.RawMessage) string {
		if method != "l2node_syncImmediate" {
			return `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`
		}
		if len(params) == 0 {
			return `{"jsonrpc":"2.0","id":1,"result":3}`
		}
		if string(params[0]) == "9" {
			return `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"failed to sync: unable to sync to the requested block"}}`
		}
		return `{"jsonrpc":"2.0","id":1,"result":` + string(params[0]) + `}`
	})
	c := NewClient(srv.URL)

	synced, err := c.SyncImmediate(nil)
	require.NoError(t, err)
	require.Equal(t, uint64(3), synced)

	target := uint64(4)
	synced, err = c.SyncImmediate(&target)
	require.NoError(t, err)
	require.Equal(t, uint64(4), synced)

	target = 9
	_, err = c.SyncImmediate(&target)
	require.ErrorContains(t, err, "unable to sync")
}

func TestClientTreeCalls(t *testing.T) {
	t.Parallel()
	root := common.HexToHash("0xabc")
	srv := newTestServer(t, func(method string, params []json.RawMessage) string {
		switch method {
		case "l2node_getTreeRoot":
			return `{"jsonrpc":"2.0","id":1,"result":{"tree":` + string(params[0]) + `,"root":"` + root.Hex() + `","size":3}}`
		case "l2node_findLeafIndex":
			if string(params[1]) == `"`+root.Hex()+`"` {
				return `{"jsonrpc":"2.0","id":1,"result":2}`
			}
			return `{"jsonrpc":"2.0","id":1,"result":null}`
		case "l2node_status":
			return `{"jsonrpc":"2.0","id":1,"result":{"syncedToL2Block":8,"state":"RUNNING"}}`
		default:
			return `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`
		}
	})
	c := NewClient(srv.URL)

	treeRoot, err := c.GetTreeRoot(l2block.PrivateDataTree, true)
	require.NoError(t, err)
	require.Equal(t, "privatedata", treeRoot.Tree)
	require.Equal(t, root, treeRoot.Root)
	require.Equal(t, uint32(3), treeRoot.Size)

	index, err := c.FindLeafIndex(l2block.NullifierTree, root, false)
	require.NoError(t, err)
	require.NotNil(t, index)
	require.Equal(t, uint32(2), *index)

	index, err = c.FindLeafIndex(l2block.NullifierTree, common.HexToHash("0x1"), false)
	require.NoError(t, err)
	require.Nil(t, index)

	status, err := c.Status()
	require.NoError(t, err)
	require.Equal(t, uint64(8), status.SyncedToL2Block)
	require.Equal(t, "RUNNING", status.State)

	_, err = c.SendTxs(nil)
	require.ErrorContains(t, err, "method not found")
}
