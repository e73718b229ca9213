package blockbuilder

import (
	"context"
	"fmt"

	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/0xPolygon/cdk-l2node/merkletrees"
	"github.com/ethereum/go-ethereum/common"
)

// WorldState gives access to the latest state of the trees.
type WorldState interface {
	GetLatest() merkletrees.MerkleTreeOperations
}

// Builder produces blocks by staging the effects of the txs on the latest
// state of the trees. The changes are left staged, they get committed once the
// block is received back from L1.
type Builder struct {
	ws      WorldState
	chainID uint64
	version uint64
	log     *log.Logger
}

func New(ws WorldState, chainID, version uint64) *Builder {
	return &Builder{
		ws:      ws,
		chainID: chainID,
		version: version,
		log:     log.WithFields("module", "blockbuilder"),
	}
}

// BuildL2Block returns the block number containing txs and its proof. Proving
// is not done by this builder, so the proof is always empty.
func (b *Builder) BuildL2Block(ctx context.Context, number uint64, txs []l2block.Tx) (l2block.L2Block, []byte, error) {
	nullifiers := make([]common.Hash, 0, len(txs)*l2block.MaxNullifiersPerTx)
	commitments := make([]common.Hash, 0, len(txs)*l2block.MaxCommitmentsPerTx)
	for _, tx := range txs {
		nullifiers = append(nullifiers, tx.PaddedNullifiers()...)
		commitments = append(commitments, tx.PaddedCommitments()...)
	}

	// staged as a single job so no block handled by the sync loop can land
	// between the start and end snapshots
	start, end, err := b.ws.GetLatest().StageBlock(ctx, number, nullifiers, commitments)
	if err != nil {
		return l2block.L2Block{}, nil, fmt.Errorf("error staging block %d: %w", number, err)
	}
	block := l2block.L2Block{
		Number:              number,
		ChainID:             b.chainID,
		Version:             b.version,
		StartSnapshots:      start,
		EndSnapshots:        end,
		NewCommitments:      commitments,
		NewNullifiers:       nullifiers,
		NewContracts:        []common.Hash{},
		NewL1ToL2Messages:   []common.Hash{},
		NewPublicDataWrites: []l2block.PublicDataWrite{},
	}
	b.log.Infof("built block %d with %d txs, hash %s", number, len(txs), block.Hash().Hex())
	return block, []byte{}, nil
}
