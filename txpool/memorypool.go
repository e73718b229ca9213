package txpool

import (
	"context"
	"sync"

	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/ethereum/go-ethereum/common"
)

// Status of the pool: the last block it has seen.
type Status struct {
	SyncedToL2Block uint64 `json:"syncedToL2Block"`
}

// MemoryPool keeps the pending txs in memory, in arrival order.
type MemoryPool struct {
	mu     sync.RWMutex
	txs    map[common.Hash]l2block.Tx
	order  []common.Hash
	synced uint64
	log    *log.Logger
}

func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		txs: make(map[common.Hash]l2block.Tx),
		log: log.WithFields("module", "txpool"),
	}
}

// AddTxs adds the valid txs and returns their hashes. Invalid txs and
// duplicates are logged and skipped.
func (p *MemoryPool) AddTxs(ctx context.Context, txs []l2block.Tx) ([]common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	added := make([]common.Hash, 0, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			p.log.Warnf("discarding tx %d of the batch: %v", i, err)
			continue
		}
		if tx.IsEmpty() {
			p.log.Warnf("discarding tx %d of the batch: empty tx", i)
			continue
		}
		hash := tx.Hash()
		if _, ok := p.txs[hash]; ok {
			p.log.Debugf("tx %s already in the pool", hash.Hex())
			continue
		}
		p.txs[hash] = tx
		p.order = append(p.order, hash)
		added = append(added, hash)
	}
	if len(added) > 0 {
		p.log.Infof("added %d txs to the pool", len(added))
	}
	return added, nil
}

// GetTxs returns every pending tx in arrival order.
func (p *MemoryPool) GetTxs(ctx context.Context) ([]l2block.Tx, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	txs := make([]l2block.Tx, 0, len(p.order))
	for _, h := range p.order {
		txs = append(txs, p.txs[h])
	}
	return txs, nil
}

// DeleteTxs removes the given txs, unknown hashes are ignored.
func (p *MemoryPool) DeleteTxs(ctx context.Context, hashes []common.Hash) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleteTxs(hashes)
	return nil
}

func (p *MemoryPool) deleteTxs(hashes []common.Hash) {
	deleted := 0
	for _, h := range hashes {
		if _, ok := p.txs[h]; ok {
			delete(p.txs, h)
			deleted++
		}
	}
	if deleted == 0 {
		return
	}
	order := make([]common.Hash, 0, len(p.txs))
	for _, h := range p.order {
		if _, ok := p.txs[h]; ok {
			order = append(order, h)
		}
	}
	p.order = order
}

func (p *MemoryPool) Status(ctx context.Context) (Status, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Status{SyncedToL2Block: p.synced}, nil
}

// SetSyncedBlock moves the pool to num, used to resume from the height of an
// existing world state. It never moves the pool back.
func (p *MemoryPool) SetSyncedBlock(num uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if num > p.synced {
		p.synced = num
	}
}

// HandleL2Block drops the txs spending any nullifier of block, they can no
// longer be mined, and moves the pool to its height.
func (p *MemoryPool) HandleL2Block(ctx context.Context, block l2block.L2Block) {
	p.mu.Lock()
	defer p.mu.Unlock()
	spent := make(map[common.Hash]struct{}, len(block.NewNullifiers))
	for _, n := range block.NewNullifiers {
		if n != (common.Hash{}) {
			spent[n] = struct{}{}
		}
	}
	var toDelete []common.Hash
	for _, h := range p.order {
		for _, n := range p.txs[h].Nullifiers {
			if _, ok := spent[n]; ok {
				toDelete = append(toDelete, h)
				break
			}
		}
	}
	p.deleteTxs(toDelete)
	if len(toDelete) > 0 {
		p.log.Infof("removed %d txs mined or invalidated by block %d", len(toDelete), block.Number)
	}
	if block.Number > p.synced {
		p.synced = block.Number
	}
}
