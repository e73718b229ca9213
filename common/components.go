package common

import (
	"errors"
	"fmt"
)

const (
	// SEQUENCER name to identify the sequencer component (implies the tx pool and the L1 publisher)
	SEQUENCER = "sequencer"
	// RPC name to identify the rpc component
	RPC = "rpc"
)

var ErrUnknownComponent = errors.New("unknown component")

// ValidateComponents fails on the first name that is not a known component.
// The world state synchroniser always runs, it is not a component.
func ValidateComponents(components []string) error {
	for _, c := range components {
		switch c {
		case SEQUENCER, RPC:
		default:
			return fmt.Errorf("%w: %s", ErrUnknownComponent, c)
		}
	}
	return nil
}
