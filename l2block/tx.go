package l2block

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/iden3/go-iden3-crypto/keccak256"
)

const (
	// MaxNullifiersPerTx is the amount of nullifier slots each tx takes in a block.
	MaxNullifiersPerTx = 4
	// MaxCommitmentsPerTx is the amount of commitment slots each tx takes in a block.
	MaxCommitmentsPerTx = 4
)

var (
	ErrTooManyNullifiers  = errors.New("too many nullifiers")
	ErrTooManyCommitments = errors.New("too many commitments")
	ErrZeroNullifier      = errors.New("zero nullifier")
	ErrDuplicateNullifier = errors.New("duplicated nullifier")
)

// Tx is a private transaction as seen by the sequencer: the nullifiers it
// spends, the commitments it creates and the auxiliary data published along
// with it.
type Tx struct {
	Nullifiers     []common.Hash   `json:"nullifiers"`
	Commitments    []common.Hash   `json:"commitments"`
	UnverifiedData []hexutil.Bytes `json:"unverifiedData"`
}

// MakeEmptyTx returns the placeholder used to fill unused slots of a block.
func MakeEmptyTx() Tx {
	return Tx{}
}

// IsEmpty reports whether the tx has no effects at all.
func (tx Tx) IsEmpty() bool {
	return len(tx.Nullifiers) == 0 && len(tx.Commitments) == 0 && len(tx.UnverifiedData) == 0
}

// Hash returns the keccak256 of the RLP encoding of the tx.
func (tx Tx) Hash() common.Hash {
	encoded, err := rlp.EncodeToBytes(&tx)
	if err != nil {
		// every field is RLP encodable
		panic(fmt.Sprintf("rlp encoding tx: %v", err))
	}
	return common.BytesToHash(keccak256.Hash(encoded))
}

// Validate checks the tx fits into its block slots.
func (tx Tx) Validate() error {
	if len(tx.Nullifiers) > MaxNullifiersPerTx {
		return fmt.Errorf("%w: %d > %d", ErrTooManyNullifiers, len(tx.Nullifiers), MaxNullifiersPerTx)
	}
	if len(tx.Commitments) > MaxCommitmentsPerTx {
		return fmt.Errorf("%w: %d > %d", ErrTooManyCommitments, len(tx.Commitments), MaxCommitmentsPerTx)
	}
	seen := make(map[common.Hash]struct{}, len(tx.Nullifiers))
	for _, n := range tx.Nullifiers {
		if n == (common.Hash{}) {
			return ErrZeroNullifier
		}
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNullifier, n.Hex())
		}
		seen[n] = struct{}{}
	}
	return nil
}

// PaddedNullifiers returns the nullifiers of the tx padded with zero hashes up
// to MaxNullifiersPerTx.
func (tx Tx) PaddedNullifiers() []common.Hash {
	return pad(tx.Nullifiers, MaxNullifiersPerTx)
}

// PaddedCommitments returns the commitments of the tx padded with zero hashes
// up to MaxCommitmentsPerTx.
func (tx Tx) PaddedCommitments() []common.Hash {
	return pad(tx.Commitments, MaxCommitmentsPerTx)
}

func pad(values []common.Hash, size int) []common.Hash {
	out := make([]common.Hash, size)
	copy(out, values)
	return out
}
