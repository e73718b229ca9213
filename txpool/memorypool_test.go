package txpool

import (
	"context"
	"testing"

	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func testTx(nullifiers ...string) l2block.Tx {
	tx := l2block.Tx{}
	for _, n := range nullifiers {
		tx.Nullifiers = append(tx.Nullifiers, common.HexToHash(n))
	}
	return tx
}

func TestAddTxs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := NewMemoryPool()

	valid1 := testTx("0x01")
	valid2 := testTx("0x02", "0x03")
	tooMany := testTx("0x10", "0x11", "0x12", "0x13", "0x14")
	zero := l2block.Tx{Nullifiers: []common.Hash{{}}}

	added, err := p.AddTxs(ctx, []l2block.Tx{valid1, tooMany, valid2, zero, l2block.MakeEmptyTx(), valid1})
	require.NoError(t, err)
	require.Equal(t, []common.Hash{valid1.Hash(), valid2.Hash()}, added)

	txs, err := p.GetTxs(ctx)
	require.NoError(t, err)
	require.Equal(t, []l2block.Tx{valid1, valid2}, txs)
}

func TestDeleteTxsKeepsOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := NewMemoryPool()
	txs := []l2block.Tx{testTx("0x01"), testTx("0x02"), testTx("0x03"), testTx("0x04")}
	_, err := p.AddTxs(ctx, txs)
	require.NoError(t, err)

	require.NoError(t, p.DeleteTxs(ctx, []common.Hash{txs[1].Hash(), common.HexToHash("0xdead")}))
	got, err := p.GetTxs(ctx)
	require.NoError(t, err)
	require.Equal(t, []l2block.Tx{txs[0], txs[2], txs[3]}, got)

	require.NoError(t, p.DeleteTxs(ctx, nil))
	got, err = p.GetTxs(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestHandleL2Block(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := NewMemoryPool()
	mined := testTx("0x01")
	conflicting := testTx("0x05", "0x02")
	pending := testTx("0x03")
	_, err := p.AddTxs(ctx, []l2block.Tx{mined, conflicting, pending})
	require.NoError(t, err)

	p.HandleL2Block(ctx, l2block.L2Block{
		Number:        7,
		NewNullifiers: []common.Hash{common.HexToHash("0x01"), common.HexToHash("0x02"), {}, {}},
	})
	got, err := p.GetTxs(ctx)
	require.NoError(t, err)
	require.Equal(t, []l2block.Tx{pending}, got)

	status, err := p.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(7), status.SyncedToL2Block)

	p.SetSyncedBlock(9)
	status, err = p.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(9), status.SyncedToL2Block)

	// a late resume does not undo blocks already handled
	p.SetSyncedBlock(8)
	status, err = p.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(9), status.SyncedToL2Block)
}
