package sync

import (
	"context"
	"sync"
	"time"

	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/log"
)

// L2BlockSource provides the blocks already settled on L1.
type L2BlockSource interface {
	GetBlockNumber(ctx context.Context) (uint64, error)
	GetBlocks(ctx context.Context, from uint64, limit int) ([]l2block.L2Block, error)
}

// L2BlockDownloader prefetches blocks from a source into a bounded queue.
// Blocks are queued contiguously, none is skipped or dropped.
type L2BlockDownloader struct {
	source       L2BlockSource
	queue        chan l2block.L2Block
	pollInterval time.Duration
	rh           *RetryHandler
	log          *log.Logger

	// collectMu serialises the fetches of the loop and PollImmediate
	collectMu sync.Mutex
	from      uint64

	startOnce sync.Once
	stopOnce  sync.Once
	stopped   chan struct{}
	cancel    context.CancelFunc
	loopDone  chan struct{}
	mu        sync.Mutex
}

func NewL2BlockDownloader(
	source L2BlockSource,
	maxQueueSize int,
	pollInterval time.Duration,
	rh *RetryHandler,
) *L2BlockDownloader {
	if maxQueueSize < 1 {
		maxQueueSize = 1
	}
	return &L2BlockDownloader{
		source:       source,
		queue:        make(chan l2block.L2Block, maxQueueSize),
		pollInterval: pollInterval,
		rh:           rh,
		log:          log.WithFields("module", "l2blockdownloader"),
		stopped:      make(chan struct{}),
	}
}

// Start launches the background polling beginning at fromBlock. Only the first
// call has effect.
func (d *L2BlockDownloader) Start(ctx context.Context, fromBlock uint64) {
	d.startOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.isStopped() {
			return
		}
		d.collectMu.Lock()
		d.from = fromBlock
		d.collectMu.Unlock()

		loopCtx, cancel := context.WithCancel(ctx)
		d.cancel = cancel
		d.loopDone = make(chan struct{})
		go d.loop(loopCtx)
	})
}

func (d *L2BlockDownloader) loop(ctx context.Context) {
	defer close(d.loopDone)
	d.log.Infof("starting to download blocks from %d", d.nextBlock())
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			d.log.Info("context cancelled")
			return
		case <-d.stopped:
			return
		case <-ticker.C:
		}
		_, err := d.collect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			attempts++
			d.log.Errorf("error downloading blocks from %d: %v", d.nextBlock(), err)
			if !d.rh.Handle(ctx, "downloadL2Blocks", attempts) {
				return
			}
			continue
		}
		attempts = 0
	}
}

func (d *L2BlockDownloader) nextBlock() uint64 {
	d.collectMu.Lock()
	defer d.collectMu.Unlock()
	return d.from
}

// collect fetches as many blocks as fit in the queue and returns how many
// were queued.
func (d *L2BlockDownloader) collect(ctx context.Context) (int, error) {
	d.collectMu.Lock()
	defer d.collectMu.Unlock()

	free := cap(d.queue) - len(d.queue)
	if free <= 0 {
		return 0, nil
	}
	latest, err := d.source.GetBlockNumber(ctx)
	if err != nil {
		return 0, err
	}
	if latest < d.from {
		return 0, nil
	}
	limit := free
	if pending := latest - d.from + 1; pending < uint64(limit) {
		limit = int(pending)
	}
	blocks, err := d.source.GetBlocks(ctx, d.from, limit)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, b := range blocks {
		if b.Number != d.from {
			d.log.Warnf("source returned block %d while expecting %d, discarding the rest", b.Number, d.from)
			break
		}
		// only collect adds to the queue and it holds collectMu, so the free
		// slots computed above are still free
		select {
		case d.queue <- b:
		case <-d.stopped:
			return queued, nil
		}
		d.from++
		queued++
	}
	if queued > 0 {
		d.log.Debugf("queued %d blocks, next block to download %d", queued, d.from)
	}
	return queued, nil
}

// GetL2Blocks removes up to maxBlocks blocks from the queue. If the queue is empty
// it waits up to timeout for one to arrive; an empty result is not an error.
func (d *L2BlockDownloader) GetL2Blocks(ctx context.Context, maxBlocks int, timeout time.Duration) []l2block.L2Block {
	if maxBlocks <= 0 || d.isStopped() {
		return nil
	}
	blocks := d.drain(nil, maxBlocks)
	if len(blocks) > 0 || timeout <= 0 {
		return blocks
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case b := <-d.queue:
		return d.drain([]l2block.L2Block{b}, maxBlocks)
	case <-timer.C:
	case <-d.stopped:
	case <-ctx.Done():
	}
	return nil
}

func (d *L2BlockDownloader) drain(blocks []l2block.L2Block, maxBlocks int) []l2block.L2Block {
	for len(blocks) < maxBlocks {
		select {
		case b := <-d.queue:
			blocks = append(blocks, b)
		default:
			return blocks
		}
	}
	return blocks
}

// PollImmediate fetches new blocks right away and returns how many were
// queued. It does not wait for room in the queue.
func (d *L2BlockDownloader) PollImmediate(ctx context.Context) (int, error) {
	if d.isStopped() {
		return 0, nil
	}
	return d.collect(ctx)
}

// Stop halts the background polling. Safe to call more than once.
func (d *L2BlockDownloader) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		close(d.stopped)
		cancel, done := d.cancel, d.loopDone
		d.mu.Unlock()
		if cancel != nil {
			cancel()
			<-done
		}
		d.log.Info("stopped")
	})
}

func (d *L2BlockDownloader) isStopped() bool {
	select {
	case <-d.stopped:
		return true
	default:
		return false
	}
}
