package main

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xPolygon/cdk-l2node/blockbuilder"
	"github.com/0xPolygon/cdk-l2node/config/types"
	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/merkletrees"
	"github.com/0xPolygon/cdk-l2node/sequencer"
	"github.com/0xPolygon/cdk-l2node/sequencer/mocks"
	"github.com/0xPolygon/cdk-l2node/txpool"
	"github.com/0xPolygon/cdk-l2node/worldstate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testWorldStateConfig() worldstate.Config {
	return worldstate.Config{
		BlockCheckInterval:         types.NewDuration(5 * time.Millisecond),
		BlockCollectTimeout:        types.NewDuration(20 * time.Millisecond),
		L2QueueSize:                10,
		RetryAfterErrorPeriod:      types.NewDuration(5 * time.Millisecond),
		MaxRetryAttemptsAfterError: -1,
	}
}

// newBlockSource returns trees holding n blocks in their archive.
func newBlockSource(t *testing.T, n int) *merkletrees.MerkleTrees {
	t.Helper()
	ctx := context.Background()
	source, err := merkletrees.New(ctx, merkletrees.Config{DBPath: filepath.Join(t.TempDir(), "source.sqlite")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = source.Stop(context.Background()) })

	builder := blockbuilder.New(worldStateView{source}, 1, 1)
	for i := 1; i <= n; i++ {
		tx := l2block.Tx{
			Nullifiers:  []common.Hash{common.BigToHash(big.NewInt(int64(i)))},
			Commitments: []common.Hash{common.BigToHash(big.NewInt(int64(1000 + i)))},
		}
		block, _, err := builder.BuildL2Block(ctx, uint64(i), []l2block.Tx{tx})
		require.NoError(t, err)
		require.NoError(t, source.HandleL2Block(ctx, block))
	}
	return source
}

type worldStateView struct {
	trees *merkletrees.MerkleTrees
}

func (w worldStateView) GetLatest() merkletrees.MerkleTreeOperations {
	return merkletrees.NewFacade(w.trees, true)
}

func TestSyncAndSequenceResumesFromExistingState(t *testing.T) {
	ctx := context.Background()
	source := newBlockSource(t, 2)
	dbPath := filepath.Join(t.TempDir(), "l2node.sqlite")

	// first run syncs blocks 1 and 2
	trees, err := merkletrees.New(ctx, merkletrees.Config{DBPath: dbPath})
	require.NoError(t, err)
	ws := worldstate.New(testWorldStateConfig(), trees, source)
	require.NoError(t, syncAndSequence(ctx, ws, nil, nil))
	require.Equal(t, uint64(2), ws.Status().SyncedToL2Block)
	require.NoError(t, ws.Stop(ctx))

	// second run starts from the trees on disk, no block is applied
	trees, err = merkletrees.New(ctx, merkletrees.Config{DBPath: dbPath})
	require.NoError(t, err)
	ws = worldstate.New(testWorldStateConfig(), trees, source)
	t.Cleanup(func() { _ = ws.Stop(context.Background()) })
	pool := txpool.NewMemoryPool()
	ws.OnBlockApplied(pool.HandleL2Block)

	publisher := mocks.NewPublisherMock(t)
	published := make(chan l2block.L2Block, 1)
	publisher.On("ProcessL2Block", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { published <- args.Get(1).(l2block.L2Block) }).
		Return(nil).Once()
	publisher.On("ProcessUnverifiedData", mock.Anything, uint64(3), mock.Anything).Return(nil).Maybe()

	seq, err := sequencer.New(sequencer.Config{
		TxPollingInterval:          types.NewDuration(time.Millisecond),
		PublishRetryInterval:       types.NewDuration(time.Millisecond),
		MaxTxsPerBlock:             1,
		MinTxsPerBlock:             1,
		TxSlotsPerBlock:            1,
		RetryAfterErrorPeriod:      types.NewDuration(time.Millisecond),
		MaxRetryAttemptsAfterError: -1,
	}, pool, ws, blockbuilder.New(ws, 1, 1), publisher)
	require.NoError(t, err)
	t.Cleanup(seq.Stop)

	_, err = pool.AddTxs(ctx, []l2block.Tx{{
		Nullifiers:  []common.Hash{common.HexToHash("0xaa")},
		Commitments: []common.Hash{common.HexToHash("0xbb")},
	}})
	require.NoError(t, err)

	require.NoError(t, syncAndSequence(ctx, ws, pool, seq))
	status, err := pool.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), status.SyncedToL2Block)

	select {
	case block := <-published:
		require.Equal(t, uint64(3), block.Number)
		committed, err := ws.GetCommitted().GetSnapshots(ctx)
		require.NoError(t, err)
		require.Equal(t, committed, block.StartSnapshots)
	case <-time.After(5 * time.Second):
		t.Fatal("no block published")
	}
}
