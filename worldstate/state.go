package worldstate

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	ErrIllegalState      = errors.New("illegal state")
	ErrAlreadyStopped    = fmt.Errorf("%w: world state synchroniser already stopped", ErrIllegalState)
	ErrUnreachableTarget = errors.New("unable to sync to the requested block")
	ErrOutOfOrderBlock   = errors.New("block out of order")
)

// SyncState is the lifecycle state of the synchroniser.
type SyncState int32

const (
	StateIdle SyncState = iota
	StateSynching
	StateRunning
	StateStopped
)

func (s SyncState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSynching:
		return "SYNCHING"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(s))
	}
}

func (s SyncState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func canTransition(from, to SyncState) bool {
	switch to {
	case StateSynching:
		return from == StateIdle
	case StateRunning:
		return from == StateIdle || from == StateSynching
	case StateStopped:
		return from != StateStopped
	default:
		return false
	}
}

// Status is an advisory snapshot of the synchroniser.
type Status struct {
	SyncedToL2Block uint64    `json:"syncedToL2Block"`
	State           SyncState `json:"state"`
}

// syncState holds the state shared between the sync loop and the readers.
// Every change goes through transition.
type syncState struct {
	current atomic.Int32
}

func (s *syncState) get() SyncState {
	return SyncState(s.current.Load())
}

func (s *syncState) transition(to SyncState) (SyncState, error) {
	for {
		from := s.get()
		if !canTransition(from, to) {
			return from, fmt.Errorf("%w: %s -> %s", ErrIllegalState, from, to)
		}
		if s.current.CompareAndSwap(int32(from), int32(to)) {
			return from, nil
		}
	}
}
