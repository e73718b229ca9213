package publisher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/0xPolygon/cdk-l2node/config/types"
	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/0xPolygon/zkevm-ethtx-manager/ethtxmanager"
	ethtxtypes "github.com/0xPolygon/zkevm-ethtx-manager/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

const (
	rollupABIJSON = `[{
		"inputs": [
			{"internalType": "bytes", "name": "_proof", "type": "bytes"},
			{"internalType": "bytes", "name": "_l2Block", "type": "bytes"}
		],
		"name": "process",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}]`
	unverifiedDataEmitterABIJSON = `[{
		"inputs": [
			{"internalType": "uint256", "name": "_l2BlockNum", "type": "uint256"},
			{"internalType": "bytes", "name": "_data", "type": "bytes"}
		],
		"name": "emitUnverifiedData",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}]`
)

var ErrTxFailed = errors.New("L1 tx failed")

type Config struct {
	// RollupAddr is the address of the rollup contract receiving the blocks
	RollupAddr common.Address `mapstructure:"RollupAddr"`
	// UnverifiedDataEmitterAddr is the address of the contract receiving the unverified data
	UnverifiedDataEmitterAddr common.Address `mapstructure:"UnverifiedDataEmitterAddr"`
	// RequiredConfirmations is the number of L1 blocks, counting the one including it, a tx needs
	RequiredConfirmations uint64 `mapstructure:"RequiredConfirmations"`
	// PublishRetryInterval is the wait between attempts to send a tx
	PublishRetryInterval types.Duration `mapstructure:"PublishRetryInterval"`
	// WaitPeriodMonitorTx is the interval at which the status of a sent tx is checked
	WaitPeriodMonitorTx types.Duration `mapstructure:"WaitPeriodMonitorTx"`
	// GasOffset is added to the gas estimation of every tx
	GasOffset uint64 `mapstructure:"GasOffset"`
	// EthTxManager is the configuration of the tx manager sending the txs
	EthTxManager ethtxmanager.Config `mapstructure:"EthTxManager"`
}

type EthTxManager interface {
	Add(ctx context.Context,
		to *common.Address,
		value *big.Int,
		data []byte,
		gasOffset uint64,
		sidecar *ethtypes.BlobTxSidecar,
	) (common.Hash, error)
	Result(ctx context.Context, id common.Hash) (ethtxtypes.MonitoredTxResult, error)
}

// L1Publisher sends blocks and their unverified data to L1 and waits until the
// txs are confirmed.
type L1Publisher struct {
	cfg        Config
	ethTxMan   EthTxManager
	l1Client   ethereum.BlockNumberReader
	rollupABI  abi.ABI
	emitterABI abi.ABI
	log        *log.Logger
}

func New(cfg Config, ethTxMan EthTxManager, l1Client ethereum.BlockNumberReader) (*L1Publisher, error) {
	rollupABI, err := abi.JSON(strings.NewReader(rollupABIJSON))
	if err != nil {
		return nil, err
	}
	emitterABI, err := abi.JSON(strings.NewReader(unverifiedDataEmitterABIJSON))
	if err != nil {
		return nil, err
	}
	return &L1Publisher{
		cfg:        cfg,
		ethTxMan:   ethTxMan,
		l1Client:   l1Client,
		rollupABI:  rollupABI,
		emitterABI: emitterABI,
		log:        log.WithFields("module", "publisher"),
	}, nil
}

// ProcessL2Block sends the block and its proof to the rollup contract.
func (p *L1Publisher) ProcessL2Block(ctx context.Context, block l2block.L2Block, proof []byte) error {
	encoded, err := block.Encode()
	if err != nil {
		return fmt.Errorf("error encoding block %d: %w", block.Number, err)
	}
	data, err := p.rollupABI.Pack("process", proof, encoded)
	if err != nil {
		return err
	}
	return p.sendAndWait(ctx, p.cfg.RollupAddr, data, fmt.Sprintf("block %d", block.Number))
}

// ProcessUnverifiedData sends the unverified data of a block.
func (p *L1Publisher) ProcessUnverifiedData(ctx context.Context, blockNumber uint64, data l2block.UnverifiedData) error {
	calldata, err := p.emitterABI.Pack("emitUnverifiedData", new(big.Int).SetUint64(blockNumber), data.Bytes())
	if err != nil {
		return err
	}
	return p.sendAndWait(ctx, p.cfg.UnverifiedDataEmitterAddr, calldata, fmt.Sprintf("unverified data of block %d", blockNumber))
}

func (p *L1Publisher) sendAndWait(ctx context.Context, to common.Address, data []byte, what string) error {
	var (
		id  common.Hash
		err error
	)
	for {
		id, err = p.ethTxMan.Add(ctx, &to, big.NewInt(0), data, p.cfg.GasOffset, nil)
		if err == nil {
			break
		}
		p.log.Errorf("error adding tx for %s: %v", what, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.PublishRetryInterval.Duration):
		}
	}
	p.log.Infof("sent tx %s for %s", id.Hex(), what)
	return p.waitConfirmed(ctx, id, what)
}

func (p *L1Publisher) waitConfirmed(ctx context.Context, id common.Hash, what string) error {
	ticker := time.NewTicker(p.cfg.WaitPeriodMonitorTx.Duration)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		p.log.Debugf("waiting for tx %s to be mined", id.Hex())
		res, err := p.ethTxMan.Result(ctx, id)
		if err != nil {
			p.log.Error("error calling ethTxMan.Result: ", err)
			continue
		}
		switch res.Status {
		case ethtxtypes.MonitoredTxStatusCreated,
			ethtxtypes.MonitoredTxStatusSent:
			continue
		case ethtxtypes.MonitoredTxStatusFailed:
			return fmt.Errorf("%w: tx %s for %s", ErrTxFailed, res.ID.Hex(), what)
		case ethtxtypes.MonitoredTxStatusMined,
			ethtxtypes.MonitoredTxStatusSafe,
			ethtxtypes.MonitoredTxStatusFinalized:
			confirmed, err := p.isConfirmed(ctx, res.MinedAtBlockNumber)
			if err != nil {
				p.log.Error("error getting the L1 block number: ", err)
				continue
			}
			if confirmed {
				p.log.Infof("tx %s for %s confirmed at L1 block %s", id.Hex(), what, res.MinedAtBlockNumber)
				return nil
			}
		default:
			p.log.Error("unexpected tx status: ", res.Status)
		}
	}
}

func (p *L1Publisher) isConfirmed(ctx context.Context, minedAt *big.Int) (bool, error) {
	if p.cfg.RequiredConfirmations == 0 {
		return true, nil
	}
	if minedAt == nil {
		return false, nil
	}
	latest, err := p.l1Client.BlockNumber(ctx)
	if err != nil {
		return false, err
	}
	return latest+1 >= minedAt.Uint64()+p.cfg.RequiredConfirmations, nil
}
