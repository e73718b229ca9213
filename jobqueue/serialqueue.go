package jobqueue

import (
	"context"
	"errors"
	"sync"

	"github.com/0xPolygon/cdk-l2node/log"
)

var (
	// ErrCancelled is returned for every job that was queued but did not run
	// because the queue was cancelled, and for submissions after Cancel.
	ErrCancelled = errors.New("serial queue cancelled")
)

// Job is a unit of work executed by the queue. The context is cancelled when
// the queue is cancelled.
type Job func(ctx context.Context) error

// Handle allows to wait for the outcome of a submitted job.
type Handle struct {
	done chan struct{}
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

func (h *Handle) resolve(err error) {
	h.err = err
	close(h.done)
}

// Done is closed once the job has finished, failed or has been discarded.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the job is resolved or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type entry struct {
	job    Job
	handle *Handle
}

// SerialQueue runs submitted jobs one at a time, in submission order.
type SerialQueue struct {
	jobs      chan entry
	cancelled chan struct{}
	workerEnd chan struct{}

	jobsCtx    context.Context
	cancelJobs context.CancelFunc

	mu      sync.RWMutex
	closed  bool
	started bool

	startOnce  sync.Once
	cancelOnce sync.Once

	log *log.Logger
}

// NewSerialQueue creates a queue able to hold capacity pending jobs before
// Submit starts to block.
func NewSerialQueue(name string, capacity int) *SerialQueue {
	if capacity < 1 {
		capacity = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SerialQueue{
		jobs:       make(chan entry, capacity),
		cancelled:  make(chan struct{}),
		workerEnd:  make(chan struct{}),
		jobsCtx:    ctx,
		cancelJobs: cancel,
		log:        log.WithFields("queue", name),
	}
}

// Start launches the worker. Calling it more than once has no effect.
func (q *SerialQueue) Start() {
	q.startOnce.Do(func() {
		q.mu.Lock()
		q.started = true
		q.mu.Unlock()
		go q.work()
	})
}

func (q *SerialQueue) work() {
	defer close(q.workerEnd)
	for {
		select {
		case <-q.cancelled:
			return
		case e := <-q.jobs:
			// Cancel may have happened while both cases were ready
			select {
			case <-q.cancelled:
				e.handle.resolve(ErrCancelled)
				return
			default:
			}
			e.handle.resolve(q.run(e.job))
		}
	}
}

func (q *SerialQueue) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Errorf("job panicked: %v", r)
			err = errors.New("job panicked")
		}
	}()
	return job(q.jobsCtx)
}

// Submit enqueues job and returns a handle to wait for its result. It blocks
// while the queue is full.
func (q *SerialQueue) Submit(ctx context.Context, job Job) (*Handle, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, ErrCancelled
	}
	h := newHandle()
	select {
	case q.jobs <- entry{job: job, handle: h}:
		return h, nil
	case <-q.cancelled:
		return nil, ErrCancelled
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put enqueues job and waits for it to finish, returning its error.
func (q *SerialQueue) Put(ctx context.Context, job Job) error {
	h, err := q.Submit(ctx, job)
	if err != nil {
		return err
	}
	return h.Wait(ctx)
}

// SyncPoint returns once every job submitted before the call has finished.
func (q *SerialQueue) SyncPoint(ctx context.Context) error {
	return q.Put(ctx, func(context.Context) error { return nil })
}

// Cancel stops the queue. The job being executed, if any, sees its context
// cancelled and is awaited; the pending ones are discarded with ErrCancelled.
// Further submissions fail.
func (q *SerialQueue) Cancel(ctx context.Context) error {
	q.cancelOnce.Do(func() {
		close(q.cancelled)
		q.cancelJobs()
	})

	// Submit holds the read lock while sending, once this is acquired no
	// other job can be enqueued.
	q.mu.Lock()
	q.closed = true
	started := q.started
	q.mu.Unlock()

	if started {
		select {
		case <-q.workerEnd:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		select {
		case e := <-q.jobs:
			e.handle.resolve(ErrCancelled)
		default:
			return nil
		}
	}
}
