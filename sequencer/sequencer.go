package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/0xPolygon/cdk-l2node/db"
	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/0xPolygon/cdk-l2node/merkletrees"
	l2sync "github.com/0xPolygon/cdk-l2node/sync"
	"github.com/0xPolygon/cdk-l2node/txpool"
	"github.com/0xPolygon/cdk-l2node/worldstate"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/0xPolygon/cdk-l2node/sequencer"

var (
	ErrInvalidConfig = errors.New("invalid sequencer config")
	errNotSynced     = errors.New("not synced yet")
)

type TxPool interface {
	Status(ctx context.Context) (txpool.Status, error)
	GetTxs(ctx context.Context) ([]l2block.Tx, error)
	DeleteTxs(ctx context.Context, hashes []common.Hash) error
}

type WorldState interface {
	Status() worldstate.Status
	GetLatest() merkletrees.MerkleTreeOperations
}

type BlockBuilder interface {
	BuildL2Block(ctx context.Context, number uint64, txs []l2block.Tx) (l2block.L2Block, []byte, error)
}

type Publisher interface {
	ProcessL2Block(ctx context.Context, block l2block.L2Block, proof []byte) error
	ProcessUnverifiedData(ctx context.Context, blockNumber uint64, data l2block.UnverifiedData) error
}

type pendingUnverifiedData struct {
	blockNumber uint64
	data        l2block.UnverifiedData
}

// Sequencer takes txs from the pool, drops the double spends and publishes
// blocks made of the rest.
type Sequencer struct {
	cfg       Config
	pool      TxPool
	ws        WorldState
	builder   BlockBuilder
	publisher Publisher
	rh        *l2sync.RetryHandler
	log       *log.Logger

	lastPublishedBlock uint64
	// unverified data of a published block still waiting to reach L1
	pendingData *pendingUnverifiedData

	blocksPublished metric.Int64Counter
	txsRejected     metric.Int64Counter
	publishFailures metric.Int64Counter

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config, pool TxPool, ws WorldState, builder BlockBuilder, publisher Publisher) (*Sequencer, error) {
	if cfg.MaxTxsPerBlock <= 0 || cfg.TxSlotsPerBlock < cfg.MaxTxsPerBlock {
		return nil, fmt.Errorf(
			"%w: MaxTxsPerBlock %d must be positive and at most TxSlotsPerBlock %d",
			ErrInvalidConfig, cfg.MaxTxsPerBlock, cfg.TxSlotsPerBlock,
		)
	}
	if cfg.MinTxsPerBlock > cfg.MaxTxsPerBlock {
		return nil, fmt.Errorf(
			"%w: MinTxsPerBlock %d is greater than MaxTxsPerBlock %d",
			ErrInvalidConfig, cfg.MinTxsPerBlock, cfg.MaxTxsPerBlock,
		)
	}
	logger := log.WithFields("module", "sequencer")
	s := &Sequencer{
		cfg:       cfg,
		pool:      pool,
		ws:        ws,
		builder:   builder,
		publisher: publisher,
		rh: l2sync.NewRetryHandler(l2sync.RetryConfig{
			RetryAfterErrorPeriod:      cfg.RetryAfterErrorPeriod,
			MaxRetryAttemptsAfterError: cfg.MaxRetryAttemptsAfterError,
		}),
		log: logger,
	}

	meter := otel.Meter(meterName)
	var err error
	if s.blocksPublished, err = meter.Int64Counter("blocks_published"); err != nil {
		logger.Warnf("failed to create blocks_published counter: %s", err)
	}
	if s.txsRejected, err = meter.Int64Counter("txs_rejected_double_spend"); err != nil {
		logger.Warnf("failed to create txs_rejected_double_spend counter: %s", err)
	}
	if s.publishFailures, err = meter.Int64Counter("publish_failures"); err != nil {
		logger.Warnf("failed to create publish_failures counter: %s", err)
	}
	return s, nil
}

// Start syncs with the pool and the world state and then tries to build a
// block every TxPollingInterval. It returns right away, the work happens in
// the background until ctx is done or Stop is called.
func (s *Sequencer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		s.log.Warn("sequencer already started")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		if err := s.initialSync(ctx); err != nil {
			s.log.Infof("initial sync interrupted: %v", err)
			return
		}
		s.loop(ctx)
	}()
}

// Stop halts the background work and waits for the current round to finish.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("sequencer stopped")
}

// initialSync waits until the world state is running and the pool has seen
// every block it has applied. Blocks before that height are taken as
// published.
func (s *Sequencer) initialSync(ctx context.Context) error {
	attempts := 0
	for {
		synced, err := s.syncedBlock(ctx)
		if err == nil {
			s.lastPublishedBlock = synced
			s.log.Infof("initial sync done, last published block %d", s.lastPublishedBlock)
			return nil
		}
		if errors.Is(err, errNotSynced) {
			s.log.Debugf("waiting before the first block: %v", err)
		} else {
			attempts++
			s.log.Errorf("error in the initial sync: %v", err)
		}
		if !s.rh.Handle(ctx, "initialSync", attempts) {
			return ctx.Err()
		}
	}
}

func (s *Sequencer) syncedBlock(ctx context.Context) (uint64, error) {
	poolStatus, err := s.pool.Status(ctx)
	if err != nil {
		return 0, fmt.Errorf("error getting the tx pool status: %w", err)
	}
	wsStatus := s.ws.Status()
	if wsStatus.State != worldstate.StateRunning {
		return 0, fmt.Errorf("%w: world state is %s", errNotSynced, wsStatus.State)
	}
	if poolStatus.SyncedToL2Block < wsStatus.SyncedToL2Block {
		return 0, fmt.Errorf("%w: tx pool at block %d, world state at block %d",
			errNotSynced, poolStatus.SyncedToL2Block, wsStatus.SyncedToL2Block)
	}
	return wsStatus.SyncedToL2Block, nil
}

func (s *Sequencer) loop(ctx context.Context) {
	timer := time.NewTimer(s.cfg.TxPollingInterval.Duration)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		next := s.cfg.TxPollingInterval.Duration
		if err := s.work(ctx); err != nil {
			s.log.Errorf("sequencer round failed: %v", err)
			next = s.cfg.PublishRetryInterval.Duration
		}
		timer.Reset(next)
	}
}

// work runs one round: it builds and publishes at most one block. A returned
// error means the round has to be retried.
func (s *Sequencer) work(ctx context.Context) error {
	if s.pendingData != nil {
		if err := s.publishPendingData(ctx); err != nil {
			return err
		}
	}

	poolStatus, err := s.pool.Status(ctx)
	if err != nil {
		return fmt.Errorf("error getting the tx pool status: %w", err)
	}
	synced := min(poolStatus.SyncedToL2Block, s.ws.Status().SyncedToL2Block)
	if synced < s.lastPublishedBlock {
		s.log.Debugf("waiting for block %d to be synced, synced up to %d", s.lastPublishedBlock, synced)
		return nil
	}
	if synced > s.lastPublishedBlock {
		s.log.Infof("blocks up to %d were published by someone else", synced)
		s.lastPublishedBlock = synced
	}

	pending, err := s.pool.GetTxs(ctx)
	if err != nil {
		return fmt.Errorf("error getting txs from the pool: %w", err)
	}
	if len(pending) > s.cfg.MaxTxsPerBlock {
		pending = pending[:s.cfg.MaxTxsPerBlock]
	}
	if len(pending) < s.cfg.MinTxsPerBlock {
		s.log.Debugf("not enough txs to build a block: %d < %d", len(pending), s.cfg.MinTxsPerBlock)
		return nil
	}

	latest := s.ws.GetLatest()
	accepted, rejected, err := s.takeValidTxs(ctx, latest, pending)
	if len(rejected) > 0 {
		defer s.deleteTxs(ctx, rejected)
	}
	if err != nil {
		return err
	}
	if len(accepted) < s.cfg.MinTxsPerBlock {
		s.log.Debugf("not enough valid txs to build a block: %d < %d", len(accepted), s.cfg.MinTxsPerBlock)
		return nil
	}

	number := s.lastPublishedBlock + 1
	block, proof, err := s.builder.BuildL2Block(ctx, number, s.padTxs(accepted))
	if err != nil {
		return fmt.Errorf("error building block %d: %w", number, err)
	}
	if err := s.publisher.ProcessL2Block(ctx, block, proof); err != nil {
		s.publishFailures.Add(ctx, 1)
		if errRollback := latest.Rollback(ctx); errRollback != nil {
			s.log.Errorf("error rolling back block %d: %v", number, errRollback)
		}
		return fmt.Errorf("error publishing block %d: %w", number, err)
	}
	s.lastPublishedBlock = number
	s.blocksPublished.Add(ctx, 1)
	s.log.Infof("published block %d with %d txs", number, len(accepted))

	// the block is already on L1, only its unverified data is retried
	s.pendingData = &pendingUnverifiedData{
		blockNumber: number,
		data:        l2block.JoinUnverifiedData(accepted),
	}
	return s.publishPendingData(ctx)
}

func (s *Sequencer) publishPendingData(ctx context.Context) error {
	pending := s.pendingData
	if err := s.publisher.ProcessUnverifiedData(ctx, pending.blockNumber, pending.data); err != nil {
		s.publishFailures.Add(ctx, 1)
		return fmt.Errorf("error publishing unverified data of block %d: %w", pending.blockNumber, err)
	}
	s.pendingData = nil
	return nil
}

// takeValidTxs splits txs into the ones that can go in the next block and the
// hashes of the double spends. A nullifier is taken by the tree or by an
// earlier tx of the same batch.
func (s *Sequencer) takeValidTxs(
	ctx context.Context, latest merkletrees.MerkleTreeOperations, txs []l2block.Tx,
) ([]l2block.Tx, []common.Hash, error) {
	accepted := make([]l2block.Tx, 0, len(txs))
	rejected := []common.Hash{}
	taken := make(map[common.Hash]struct{})
	for _, tx := range txs {
		spent, err := s.isDoubleSpend(ctx, latest, tx, taken)
		if err != nil {
			return nil, rejected, err
		}
		if spent {
			hash := tx.Hash()
			s.log.Infof("rejecting tx %s: double spend", hash.Hex())
			s.txsRejected.Add(ctx, 1)
			rejected = append(rejected, hash)
			continue
		}
		for _, n := range tx.Nullifiers {
			taken[n] = struct{}{}
		}
		accepted = append(accepted, tx)
	}
	return accepted, rejected, nil
}

func (s *Sequencer) isDoubleSpend(
	ctx context.Context, latest merkletrees.MerkleTreeOperations, tx l2block.Tx, taken map[common.Hash]struct{},
) (bool, error) {
	for _, n := range tx.Nullifiers {
		if _, ok := taken[n]; ok {
			return true, nil
		}
		_, err := latest.FindLeafIndex(ctx, l2block.NullifierTree, n)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return false, fmt.Errorf("error looking up nullifier %s: %w", n.Hex(), err)
		}
	}
	return false, nil
}

func (s *Sequencer) padTxs(txs []l2block.Tx) []l2block.Tx {
	padded := make([]l2block.Tx, 0, s.cfg.TxSlotsPerBlock)
	padded = append(padded, txs...)
	for len(padded) < s.cfg.TxSlotsPerBlock {
		padded = append(padded, l2block.MakeEmptyTx())
	}
	return padded
}

func (s *Sequencer) deleteTxs(ctx context.Context, hashes []common.Hash) {
	if err := s.pool.DeleteTxs(ctx, hashes); err != nil {
		s.log.Errorf("error deleting %d rejected txs from the pool: %v", len(hashes), err)
	}
}
