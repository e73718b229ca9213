package worldstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/0xPolygon/cdk-l2node/config/types"
	"github.com/0xPolygon/cdk-l2node/jobqueue"
	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/0xPolygon/cdk-l2node/merkletrees"
	l2sync "github.com/0xPolygon/cdk-l2node/sync"
)

const defaultCollectTimeout = time.Second

type Config struct {
	// BlockCheckInterval is the interval at which the block source is polled
	BlockCheckInterval types.Duration `mapstructure:"BlockCheckInterval"`
	// BlockCollectTimeout is how long the sync loop waits for a block before trying again
	BlockCollectTimeout types.Duration `mapstructure:"BlockCollectTimeout"`
	// L2QueueSize is the amount of blocks downloaded ahead of processing
	L2QueueSize int `mapstructure:"L2QueueSize"`
	// RetryAfterErrorPeriod is the wait after a failed download
	RetryAfterErrorPeriod types.Duration `mapstructure:"RetryAfterErrorPeriod"`
	// MaxRetryAttemptsAfterError before exiting, -1 to retry forever
	MaxRetryAttemptsAfterError int `mapstructure:"MaxRetryAttemptsAfterError"`
}

// MerkleStore is the persistence of the world state.
type MerkleStore interface {
	HandleL2Block(ctx context.Context, block l2block.L2Block) error
	GetSyncedBlock(ctx context.Context) (uint64, error)
	Stop(ctx context.Context) error
}

type blockDownloader interface {
	Start(ctx context.Context, fromBlock uint64)
	GetL2Blocks(ctx context.Context, maxBlocks int, timeout time.Duration) []l2block.L2Block
	PollImmediate(ctx context.Context) (int, error)
	Stop()
}

// BlockListener is called from the sync loop after a block has been applied.
type BlockListener func(ctx context.Context, block l2block.L2Block)

// signal is a one-shot outcome shared by every caller of Start.
type signal struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newSignal() *signal {
	return &signal{done: make(chan struct{})}
}

func (s *signal) resolve(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.done)
	})
}

func (s *signal) wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Synchroniser keeps the merkle trees in sync with the blocks of an
// L2BlockSource. Blocks are applied one at a time from a serial queue, which is
// the only place where the trees are modified by the synchroniser.
type Synchroniser struct {
	store      MerkleStore
	latest     merkletrees.MerkleTreeOperations
	committed  merkletrees.MerkleTreeOperations
	source     l2sync.L2BlockSource
	downloader blockDownloader
	queue      *jobqueue.SerialQueue

	collectTimeout time.Duration
	queueSize      int

	state           syncState
	syncedToL2Block atomic.Uint64
	latestAtStart   atomic.Uint64
	stopping        atomic.Bool

	// mu guards the lifecycle: Start and Stop
	mu          sync.Mutex
	startSignal *signal
	loopCancel  context.CancelFunc
	loopDone    chan struct{}

	listeners []BlockListener

	log *log.Logger
}

// New creates a synchroniser applying the blocks of source to trees.
func New(cfg Config, trees *merkletrees.MerkleTrees, source l2sync.L2BlockSource) *Synchroniser {
	rh := &l2sync.RetryHandler{
		RetryAfterErrorPeriod:      cfg.RetryAfterErrorPeriod.Duration,
		MaxRetryAttemptsAfterError: cfg.MaxRetryAttemptsAfterError,
	}
	downloader := l2sync.NewL2BlockDownloader(source, cfg.L2QueueSize, cfg.BlockCheckInterval.Duration, rh)
	return newSynchroniser(
		cfg, trees, merkletrees.NewFacade(trees, true), merkletrees.NewFacade(trees, false), source, downloader,
	)
}

func newSynchroniser(
	cfg Config,
	store MerkleStore,
	latest, committed merkletrees.MerkleTreeOperations,
	source l2sync.L2BlockSource,
	downloader blockDownloader,
) *Synchroniser {
	collectTimeout := cfg.BlockCollectTimeout.Duration
	if collectTimeout <= 0 {
		collectTimeout = defaultCollectTimeout
	}
	queueSize := cfg.L2QueueSize
	if queueSize < 1 {
		queueSize = 1
	}
	return &Synchroniser{
		store:          store,
		latest:         latest,
		committed:      committed,
		source:         source,
		downloader:     downloader,
		queue:          jobqueue.NewSerialQueue("worldstate", 1),
		collectTimeout: collectTimeout,
		queueSize:      queueSize,
		log:            log.WithFields("module", "worldstate"),
	}
}

// OnBlockApplied registers fn to be called after each applied block. It must be
// called before Start.
func (s *Synchroniser) OnBlockApplied(fn BlockListener) {
	s.listeners = append(s.listeners, fn)
}

// GetLatest returns a view of the trees including the staged changes.
func (s *Synchroniser) GetLatest() merkletrees.MerkleTreeOperations {
	return s.latest
}

// GetCommitted returns a view of the committed trees.
func (s *Synchroniser) GetCommitted() merkletrees.MerkleTreeOperations {
	return s.committed
}

// Status returns the current state without waiting for the pending work.
func (s *Synchroniser) Status() Status {
	return Status{
		SyncedToL2Block: s.syncedToL2Block.Load(),
		State:           s.state.get(),
	}
}

// Start begins syncing and returns once the trees have caught up with the
// height the block source had when it was first called. Every call shares the
// outcome of the first one.
func (s *Synchroniser) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.state.get() {
	case StateStopped:
		s.mu.Unlock()
		return ErrAlreadyStopped
	case StateIdle:
	default:
		sig := s.startSignal
		s.mu.Unlock()
		return sig.wait(ctx)
	}

	sig, err := s.start(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return sig.wait(ctx)
}

func (s *Synchroniser) start(ctx context.Context) (*signal, error) {
	synced, err := s.store.GetSyncedBlock(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting the last synced block: %w", err)
	}
	s.syncedToL2Block.Store(synced)

	latest, err := s.source.GetBlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting the latest block number: %w", err)
	}
	s.latestAtStart.Store(latest)

	next := synced + 1
	sig := newSignal()
	if next <= latest {
		if _, err := s.state.transition(StateSynching); err != nil {
			return nil, err
		}
		s.log.Infof("starting sync from %d, latest block %d", next, latest)
	} else {
		if _, err := s.state.transition(StateRunning); err != nil {
			return nil, err
		}
		sig.resolve(nil)
		s.log.Infof("next block %d already beyond latest block %d", next, latest)
	}
	s.startSignal = sig

	loopCtx, cancel := context.WithCancel(context.Background())
	s.loopCancel = cancel
	s.loopDone = make(chan struct{})
	s.queue.Start()
	go s.loop(loopCtx, sig)
	s.downloader.Start(loopCtx, next)
	s.log.Infof("started block downloader from block %d", next)
	return sig, nil
}

func (s *Synchroniser) loop(ctx context.Context, sig *signal) {
	defer close(s.loopDone)
	for !s.stopping.Load() {
		err := s.queue.Put(ctx, s.collectAndProcess)
		if err == nil {
			continue
		}
		if s.stopping.Load() || errors.Is(err, jobqueue.ErrCancelled) || ctx.Err() != nil {
			return
		}
		s.log.Errorf("error syncing the world state at block %d, sync loop halted: %v", s.syncedToL2Block.Load(), err)
		sig.resolve(err)
		return
	}
}

func (s *Synchroniser) collectAndProcess(ctx context.Context) error {
	blocks := s.downloader.GetL2Blocks(ctx, 1, s.collectTimeout)
	return s.handleL2Blocks(ctx, blocks)
}

// processQueued applies every block already downloaded, without waiting.
func (s *Synchroniser) processQueued(ctx context.Context) (int, error) {
	processed := 0
	err := s.queue.Put(ctx, func(jobCtx context.Context) error {
		blocks := s.downloader.GetL2Blocks(jobCtx, s.queueSize, 0)
		processed = len(blocks)
		return s.handleL2Blocks(jobCtx, blocks)
	})
	return processed, err
}

func (s *Synchroniser) handleL2Blocks(ctx context.Context, blocks []l2block.L2Block) error {
	for _, b := range blocks {
		if err := s.handleL2Block(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *Synchroniser) handleL2Block(ctx context.Context, b l2block.L2Block) error {
	expected := s.syncedToL2Block.Load() + 1
	if b.Number != expected {
		return fmt.Errorf("%w: got block %d, expected %d", ErrOutOfOrderBlock, b.Number, expected)
	}
	if err := s.store.HandleL2Block(ctx, b); err != nil {
		return fmt.Errorf("error handling block %d: %w", b.Number, err)
	}
	s.syncedToL2Block.Store(b.Number)
	s.log.Debugf("synced to block %d", b.Number)

	if s.state.get() == StateSynching && b.Number >= s.latestAtStart.Load() {
		if _, err := s.state.transition(StateRunning); err == nil {
			s.log.Infof("caught up at block %d", b.Number)
			s.startSignal.resolve(nil)
		}
	}
	for _, l := range s.listeners {
		l(ctx, b)
	}
	return nil
}

// SyncImmediate applies every block the source has right now.
func (s *Synchroniser) SyncImmediate(ctx context.Context) error {
	return s.syncImmediate(ctx, nil)
}

// SyncImmediateTo applies blocks until minBlockNumber is reached. It fails with
// ErrUnreachableTarget if the source does not have it.
func (s *Synchroniser) SyncImmediateTo(ctx context.Context, minBlockNumber uint64) error {
	return s.syncImmediate(ctx, &minBlockNumber)
}

func (s *Synchroniser) syncImmediate(ctx context.Context, target *uint64) error {
	if state := s.state.get(); state != StateRunning {
		return fmt.Errorf("%w: world state is %s, unable to perform sync", ErrIllegalState, state)
	}
	reached := func() bool {
		return target != nil && *target <= s.syncedToL2Block.Load()
	}
	if reached() {
		return nil
	}
	if target != nil {
		s.log.Debugf("at block %d, told to sync to block %d", s.syncedToL2Block.Load(), *target)
	} else {
		s.log.Debugf("at block %d, told to sync to latest", s.syncedToL2Block.Load())
	}

	// let the work already submitted finish first
	if err := s.queue.SyncPoint(ctx); err != nil {
		return err
	}
	for {
		if reached() {
			return nil
		}
		polled, err := s.downloader.PollImmediate(ctx)
		if err != nil {
			return fmt.Errorf("error polling blocks: %w", err)
		}
		s.log.Debugf("immediate poll yielded %d blocks", polled)
		processed, err := s.processQueued(ctx)
		if err != nil {
			return err
		}
		if polled > 0 || processed > 0 {
			continue
		}
		if target != nil {
			return fmt.Errorf(
				"%w: target %d, currently synced to block %d",
				ErrUnreachableTarget, *target, s.syncedToL2Block.Load(),
			)
		}
		return nil
	}
}

// Stop halts the sync and the merkle store. Pending Start calls fail with
// ErrAlreadyStopped. Stopping twice is a no-op.
func (s *Synchroniser) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.get() == StateStopped {
		return nil
	}
	s.log.Info("stopping world state...")
	s.stopping.Store(true)
	s.downloader.Stop()
	if err := s.queue.Cancel(ctx); err != nil {
		return err
	}
	if s.loopCancel != nil {
		s.loopCancel()
	}
	if err := s.store.Stop(ctx); err != nil {
		s.log.Errorf("error stopping the merkle store: %v", err)
	}
	if s.loopDone != nil {
		select {
		case <-s.loopDone:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if _, err := s.state.transition(StateStopped); err != nil {
		return err
	}
	if s.startSignal != nil {
		s.startSignal.resolve(ErrAlreadyStopped)
	}
	s.log.Info("world state stopped")
	return nil
}
