package publisher

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/0xPolygon/cdk-l2node/config/types"
	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/publisher/mocks"
	ethtxtypes "github.com/0xPolygon/zkevm-ethtx-manager/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type l1ClientMock struct {
	mu      sync.Mutex
	numbers []uint64
}

func (c *l1ClientMock) BlockNumber(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.numbers[0]
	if len(c.numbers) > 1 {
		c.numbers = c.numbers[1:]
	}
	return n, nil
}

func testConfig() Config {
	return Config{
		RollupAddr:                common.HexToAddress("0x1"),
		UnverifiedDataEmitterAddr: common.HexToAddress("0x2"),
		RequiredConfirmations:     2,
		PublishRetryInterval:      types.NewDuration(time.Millisecond),
		WaitPeriodMonitorTx:       types.NewDuration(time.Millisecond),
		GasOffset:                 100,
	}
}

func TestProcessL2Block(t *testing.T) {
	t.Parallel()
	txID := common.HexToHash("0x789")
	block := l2block.L2Block{Number: 3, NewNullifiers: []common.Hash{common.HexToHash("0x01")}}
	proof := []byte{0xaa}

	tests := []struct {
		name        string
		setup       func(m *mocks.EthTxManagerMock)
		l1Blocks    []uint64
		expectedErr error
	}{
		{
			name: "confirmed",
			setup: func(m *mocks.EthTxManagerMock) {
				m.On("Add", mock.Anything, mock.Anything, big.NewInt(0), mock.Anything, uint64(100), mock.Anything).
					Return(txID, nil).Once()
				m.On("Result", mock.Anything, txID).
					Return(ethtxtypes.MonitoredTxResult{ID: txID, Status: ethtxtypes.MonitoredTxStatusMined, MinedAtBlockNumber: big.NewInt(10)}, nil)
			},
			l1Blocks: []uint64{10, 11},
		},
		{
			name: "add retried",
			setup: func(m *mocks.EthTxManagerMock) {
				m.On("Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(common.Hash{}, errors.New("nonce too low")).Twice()
				m.On("Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(txID, nil).Once()
				m.On("Result", mock.Anything, txID).
					Return(ethtxtypes.MonitoredTxResult{ID: txID, Status: ethtxtypes.MonitoredTxStatusSent}, nil).Once()
				m.On("Result", mock.Anything, txID).
					Return(ethtxtypes.MonitoredTxResult{}, errors.New("unavailable")).Once()
				m.On("Result", mock.Anything, txID).
					Return(ethtxtypes.MonitoredTxResult{ID: txID, Status: ethtxtypes.MonitoredTxStatusFinalized, MinedAtBlockNumber: big.NewInt(5)}, nil)
			},
			l1Blocks: []uint64{20},
		},
		{
			name: "tx failed",
			setup: func(m *mocks.EthTxManagerMock) {
				m.On("Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(txID, nil).Once()
				m.On("Result", mock.Anything, txID).
					Return(ethtxtypes.MonitoredTxResult{ID: txID, Status: ethtxtypes.MonitoredTxStatusFailed}, nil).Once()
			},
			l1Blocks:    []uint64{0},
			expectedErr: ErrTxFailed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ethTxMan := mocks.NewEthTxManagerMock(t)
			tt.setup(ethTxMan)
			p, err := New(testConfig(), ethTxMan, &l1ClientMock{numbers: tt.l1Blocks})
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = p.ProcessL2Block(ctx, block, proof)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessL2BlockCalldata(t *testing.T) {
	t.Parallel()
	ethTxMan := mocks.NewEthTxManagerMock(t)
	cfg := testConfig()
	cfg.RequiredConfirmations = 0
	p, err := New(cfg, ethTxMan, &l1ClientMock{numbers: []uint64{0}})
	require.NoError(t, err)

	block := l2block.L2Block{Number: 9, NewCommitments: []common.Hash{common.HexToHash("0xc")}}
	txID := common.HexToHash("0x1")
	var sent []byte
	ethTxMan.On("Add", mock.Anything, &cfg.RollupAddr, big.NewInt(0), mock.Anything, cfg.GasOffset, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(3).([]byte) }).
		Return(txID, nil).Once()
	ethTxMan.On("Result", mock.Anything, txID).
		Return(ethtxtypes.MonitoredTxResult{ID: txID, Status: ethtxtypes.MonitoredTxStatusMined, MinedAtBlockNumber: big.NewInt(1)}, nil)

	require.NoError(t, p.ProcessL2Block(context.Background(), block, []byte{0x01, 0x02}))

	method, err := p.rollupABI.MethodById(sent[:4])
	require.NoError(t, err)
	require.Equal(t, "process", method.Name)
	args, err := method.Inputs.Unpack(sent[4:])
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, args[0])
	decoded, err := l2block.DecodeL2Block(args[1].([]byte))
	require.NoError(t, err)
	require.Equal(t, block.Hash(), decoded.Hash())
	require.Equal(t, block.NewCommitments, decoded.NewCommitments)
}

func TestProcessUnverifiedData(t *testing.T) {
	t.Parallel()
	ethTxMan := mocks.NewEthTxManagerMock(t)
	cfg := testConfig()
	p, err := New(cfg, ethTxMan, &l1ClientMock{numbers: []uint64{7}})
	require.NoError(t, err)

	data := l2block.UnverifiedData{Chunks: [][]byte{{0x01}, {0x02, 0x03}}}
	txID := common.HexToHash("0x2")
	var sent []byte
	ethTxMan.On("Add", mock.Anything, &cfg.UnverifiedDataEmitterAddr, big.NewInt(0), mock.Anything, cfg.GasOffset, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(3).([]byte) }).
		Return(txID, nil).Once()
	ethTxMan.On("Result", mock.Anything, txID).
		Return(ethtxtypes.MonitoredTxResult{ID: txID, Status: ethtxtypes.MonitoredTxStatusSafe, MinedAtBlockNumber: big.NewInt(6)}, nil)

	require.NoError(t, p.ProcessUnverifiedData(context.Background(), 4, data))

	method, err := p.emitterABI.MethodById(sent[:4])
	require.NoError(t, err)
	args, err := method.Inputs.Unpack(sent[4:])
	require.NoError(t, err)
	require.Equal(t, big.NewInt(4), args[0])
	decoded, err := l2block.DecodeUnverifiedData(args[1].([]byte))
	require.NoError(t, err)
	require.Equal(t, data, decoded)
}

func TestPublishCancelled(t *testing.T) {
	t.Parallel()
	ethTxMan := mocks.NewEthTxManagerMock(t)
	p, err := New(testConfig(), ethTxMan, &l1ClientMock{numbers: []uint64{0}})
	require.NoError(t, err)
	ethTxMan.On("Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(common.Hash{}, errors.New("L1 down"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = p.ProcessL2Block(ctx, l2block.L2Block{Number: 1}, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
