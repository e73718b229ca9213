package l2block

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/iden3/go-iden3-crypto/keccak256"
)

// PublicDataWrite sets the leaf LeafIndex of the public data tree to NewValue.
type PublicDataWrite struct {
	LeafIndex uint32      `json:"leafIndex"`
	NewValue  common.Hash `json:"newValue"`
}

// L2Block is the set of tree deltas produced by one rollup block together with
// the snapshots of every tree right before and right after applying them.
type L2Block struct {
	Number              uint64            `json:"number"`
	ChainID             uint64            `json:"chainId"`
	Version             uint64            `json:"version"`
	StartSnapshots      Snapshots         `json:"startSnapshots"`
	EndSnapshots        Snapshots         `json:"endSnapshots"`
	NewCommitments      []common.Hash     `json:"newCommitments"`
	NewNullifiers       []common.Hash     `json:"newNullifiers"`
	NewContracts        []common.Hash     `json:"newContracts"`
	NewL1ToL2Messages   []common.Hash     `json:"newL1ToL2Messages"`
	NewPublicDataWrites []PublicDataWrite `json:"newPublicDataWrites"`
}

// Hash identifies the block by its number, chain and resulting state.
func (b *L2Block) Hash() common.Hash {
	data := make([]byte, 0, 24+NumTrees*common.HashLength) //nolint:mnd
	data = binary.BigEndian.AppendUint64(data, b.Number)
	data = binary.BigEndian.AppendUint64(data, b.ChainID)
	data = binary.BigEndian.AppendUint64(data, b.Version)
	for _, s := range b.EndSnapshots {
		data = append(data, s.Root.Bytes()...)
	}
	return common.BytesToHash(keccak256.Hash(data))
}

// Encode returns the RLP encoding of the block, the format used for L1
// calldata and storage.
func (b *L2Block) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(b)
}

// DecodeL2Block decodes a block produced by L2Block.Encode.
func DecodeL2Block(data []byte) (L2Block, error) {
	var b L2Block
	err := rlp.DecodeBytes(data, &b)
	return b, err
}

// GlobalStateHash is the leaf appended to the blocks tree once every other
// tree has been updated for block number.
func GlobalStateHash(number uint64, roots [NumTrees]common.Hash) common.Hash {
	data := make([]byte, 0, 8+NumTrees*common.HashLength) //nolint:mnd
	data = binary.BigEndian.AppendUint64(data, number)
	for _, id := range AllTrees {
		if id == BlocksTree {
			continue
		}
		data = append(data, roots[id].Bytes()...)
	}
	return common.BytesToHash(keccak256.Hash(data))
}
