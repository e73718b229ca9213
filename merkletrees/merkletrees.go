package merkletrees

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/0xPolygon/cdk-l2node/db"
	"github.com/0xPolygon/cdk-l2node/jobqueue"
	"github.com/0xPolygon/cdk-l2node/l2block"
	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/0xPolygon/cdk-l2node/merkletrees/migrations"
	"github.com/0xPolygon/cdk-l2node/tree"
	treetypes "github.com/0xPolygon/cdk-l2node/tree/types"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/russross/meddler"
)

const (
	defaultLeafCacheSize = 10000
	queueCapacity        = 100
)

var (
	ErrUnsupportedOperation = errors.New("operation not supported by this tree")
	ErrBlockMismatch        = errors.New("block does not match the world state")
	ErrUnknownTree          = errors.New("unknown tree")
)

// Config of the merkle trees store.
type Config struct {
	// DBPath path of the SQLite file holding the trees and the block archive
	DBPath string `mapstructure:"DBPath"`
	// LeafCacheSize number of committed leaf lookups kept in memory
	LeafCacheSize int `mapstructure:"LeafCacheSize"`
}

// TreeInfo is the observable state of one tree.
type TreeInfo struct {
	TreeID l2block.TreeID `json:"treeId"`
	Root   common.Hash    `json:"root"`
	Size   uint32         `json:"size"`
}

type leafKey struct {
	tree  l2block.TreeID
	value common.Hash
}

type blockRow struct {
	Num  uint64      `meddler:"num"`
	Hash common.Hash `meddler:"hash,hash"`
	Data []byte      `meddler:"data"`
}

type syncedBlockRow struct {
	ID  int    `meddler:"id"`
	Num uint64 `meddler:"num"`
}

// MerkleTrees holds the trees of the world state. Changes are staged in a DB
// transaction (the latest state) until committed, reads can target either the
// latest or the committed state. Every operation runs through a serial queue.
type MerkleTrees struct {
	db         *sql.DB
	queue      *jobqueue.SerialQueue
	appendOnly map[l2block.TreeID]*tree.AppendOnlyTree
	publicData *tree.UpdatableTree
	leafCache  *lru.Cache[leafKey, uint32]

	// only accessed from the queue
	staged *db.Tx
	undo   []func()

	log *log.Logger
}

// New opens (or creates) the store at cfg.DBPath.
func New(ctx context.Context, cfg Config) (*MerkleTrees, error) {
	logger := log.WithFields("module", "merkletrees")
	database, err := db.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrationsDB(logger, database, migrations.Migrations()); err != nil {
		database.Close()
		return nil, err
	}
	cacheSize := cfg.LeafCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultLeafCacheSize
	}
	cache, err := lru.New[leafKey, uint32](cacheSize)
	if err != nil {
		database.Close()
		return nil, err
	}

	m := &MerkleTrees{
		db:         database,
		queue:      jobqueue.NewSerialQueue("merkletrees", queueCapacity),
		appendOnly: make(map[l2block.TreeID]*tree.AppendOnlyTree, l2block.NumTrees-1),
		leafCache:  cache,
		log:        logger,
	}
	for _, id := range l2block.AllTrees {
		if id == l2block.PublicDataTree {
			m.publicData, err = tree.NewUpdatableTree(database, migrations.TreePrefix(id))
		} else {
			m.appendOnly[id], err = tree.NewAppendOnlyTree(database, migrations.TreePrefix(id))
		}
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("error loading tree %s: %w", id, err)
		}
	}
	m.queue.Start()
	return m, nil
}

// call runs fn through the queue of m and returns its result.
func call[T any](ctx context.Context, m *MerkleTrees, fn func() (T, error)) (T, error) {
	var res T
	err := m.queue.Put(ctx, func(context.Context) error {
		var err error
		res, err = fn()
		return err
	})
	return res, err
}

func (m *MerkleTrees) run(ctx context.Context, fn func() error) error {
	return m.queue.Put(ctx, func(context.Context) error {
		return fn()
	})
}

func (m *MerkleTrees) querier(includeUncommitted bool) db.Querier {
	if includeUncommitted && m.staged != nil {
		return m.staged
	}
	return m.db
}

type treeReader interface {
	Info() treetypes.Info
	InfoAt(q db.Querier) (treetypes.Info, error)
	SiblingPath(q db.Querier, index uint32, root common.Hash) (treetypes.Proof, error)
	LeafIndex(q db.Querier, value common.Hash) (uint32, error)
}

func (m *MerkleTrees) reader(id l2block.TreeID) (treeReader, error) {
	if id == l2block.PublicDataTree {
		return m.publicData, nil
	}
	t, ok := m.appendOnly[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTree, id)
	}
	return t, nil
}

func (m *MerkleTrees) info(id l2block.TreeID, includeUncommitted bool) (treetypes.Info, error) {
	t, err := m.reader(id)
	if err != nil {
		return treetypes.Info{}, err
	}
	// without staged changes the in-memory state is the committed one
	if includeUncommitted || m.staged == nil {
		return t.Info(), nil
	}
	return t.InfoAt(m.db)
}

func (m *MerkleTrees) snapshots(includeUncommitted bool) (l2block.Snapshots, error) {
	var s l2block.Snapshots
	for _, id := range l2block.AllTrees {
		info, err := m.info(id, includeUncommitted)
		if err != nil {
			return s, err
		}
		s[id] = l2block.TreeSnapshot{Root: info.Root, NextAvailableLeafIndex: info.NextIndex}
	}
	return s, nil
}

// GetTreeInfo returns the root and size of a tree.
func (m *MerkleTrees) GetTreeInfo(ctx context.Context, id l2block.TreeID, includeUncommitted bool) (TreeInfo, error) {
	return call(ctx, m, func() (TreeInfo, error) {
		info, err := m.info(id, includeUncommitted)
		if err != nil {
			return TreeInfo{}, err
		}
		return TreeInfo{TreeID: id, Root: info.Root, Size: info.NextIndex}, nil
	})
}

// GetSnapshots returns the root and next index of every tree.
func (m *MerkleTrees) GetSnapshots(ctx context.Context, includeUncommitted bool) (l2block.Snapshots, error) {
	return call(ctx, m, func() (l2block.Snapshots, error) {
		return m.snapshots(includeUncommitted)
	})
}

// GetSiblingPath returns the proof of the leaf at index.
func (m *MerkleTrees) GetSiblingPath(
	ctx context.Context, id l2block.TreeID, index uint32, includeUncommitted bool,
) (treetypes.Proof, error) {
	return call(ctx, m, func() (treetypes.Proof, error) {
		t, err := m.reader(id)
		if err != nil {
			return treetypes.Proof{}, err
		}
		info, err := m.info(id, includeUncommitted)
		if err != nil {
			return treetypes.Proof{}, err
		}
		return t.SiblingPath(m.querier(includeUncommitted), index, info.Root)
	})
}

// FindLeafIndex returns the lowest index holding value, or db.ErrNotFound.
func (m *MerkleTrees) FindLeafIndex(
	ctx context.Context, id l2block.TreeID, value common.Hash, includeUncommitted bool,
) (uint32, error) {
	return call(ctx, m, func() (uint32, error) {
		t, err := m.reader(id)
		if err != nil {
			return 0, err
		}
		// committed leaves of append only trees never move
		cacheable := id != l2block.PublicDataTree
		key := leafKey{tree: id, value: value}
		if cacheable {
			if idx, ok := m.leafCache.Get(key); ok {
				return idx, nil
			}
		}
		idx, err := t.LeafIndex(m.querier(includeUncommitted), value)
		if err != nil {
			return 0, err
		}
		if cacheable && (!includeUncommitted || m.staged == nil) {
			m.leafCache.Add(key, idx)
		}
		return idx, nil
	})
}

// GetLeafValue returns the value of the leaf at index. Unset leaves of the
// public data tree are zero, for the other trees db.ErrNotFound is returned.
func (m *MerkleTrees) GetLeafValue(
	ctx context.Context, id l2block.TreeID, index uint32, includeUncommitted bool,
) (common.Hash, error) {
	return call(ctx, m, func() (common.Hash, error) {
		q := m.querier(includeUncommitted)
		if id == l2block.PublicDataTree {
			return m.publicData.LeafValue(q, index)
		}
		t, ok := m.appendOnly[id]
		if !ok {
			return common.Hash{}, fmt.Errorf("%w: %d", ErrUnknownTree, id)
		}
		return t.LeafValue(q, index)
	})
}

func (m *MerkleTrees) ensureStaged() error {
	if m.staged != nil {
		return nil
	}
	tx, err := db.NewTx(context.Background(), m.db)
	if err != nil {
		return fmt.Errorf("error opening transaction: %w", err)
	}
	tx.AddRollbackCallback(m.undoStaged)
	tx.AddCommitCallback(func() { m.undo = nil })
	m.staged = tx
	return nil
}

// undoStaged restores the in-memory state of the trees, last change first.
func (m *MerkleTrees) undoStaged() {
	for i := len(m.undo) - 1; i >= 0; i-- {
		m.undo[i]()
	}
	m.undo = nil
}

func (m *MerkleTrees) appendLeaves(id l2block.TreeID, leaves []common.Hash) error {
	t, ok := m.appendOnly[id]
	if !ok {
		if id == l2block.PublicDataTree {
			return fmt.Errorf("%w: append to %s", ErrUnsupportedOperation, id)
		}
		return fmt.Errorf("%w: %d", ErrUnknownTree, id)
	}
	if err := m.ensureStaged(); err != nil {
		return err
	}
	undo, err := t.AppendLeaves(m.staged, leaves)
	m.undo = append(m.undo, undo)
	if err != nil {
		return fmt.Errorf("error appending %d leaves to %s: %w", len(leaves), id, err)
	}
	return nil
}

func (m *MerkleTrees) updateLeaves(id l2block.TreeID, leaves []treetypes.Leaf) error {
	if id != l2block.PublicDataTree {
		return fmt.Errorf("%w: update leaf of %s", ErrUnsupportedOperation, id)
	}
	if err := m.ensureStaged(); err != nil {
		return err
	}
	undo, err := m.publicData.UpsertLeaves(m.staged, leaves)
	m.undo = append(m.undo, undo)
	if err != nil {
		return fmt.Errorf("error updating %d leaves of %s: %w", len(leaves), id, err)
	}
	return nil
}

// AppendLeaves stages the leaves at the end of the tree. On failure every
// staged change is discarded.
func (m *MerkleTrees) AppendLeaves(ctx context.Context, id l2block.TreeID, leaves []common.Hash) error {
	return m.run(ctx, func() error {
		if err := m.appendLeaves(id, leaves); err != nil {
			m.rollback()
			return err
		}
		return nil
	})
}

// UpdateLeaf stages value at index. Only the public data tree supports it.
func (m *MerkleTrees) UpdateLeaf(ctx context.Context, id l2block.TreeID, value common.Hash, index uint32) error {
	return m.run(ctx, func() error {
		if err := m.updateLeaves(id, []treetypes.Leaf{{Index: index, Hash: value}}); err != nil {
			m.rollback()
			return err
		}
		return nil
	})
}

func (m *MerkleTrees) commit() error {
	if m.staged == nil {
		return nil
	}
	tx := m.staged
	m.staged = nil
	if err := tx.Commit(); err != nil {
		m.log.Errorf("error committing changes: %v", err)
		if errRollback := tx.Rollback(); errRollback != nil {
			m.reload()
		}
		return err
	}
	return nil
}

func (m *MerkleTrees) rollback() {
	if m.staged == nil {
		return
	}
	tx := m.staged
	m.staged = nil
	if err := tx.Rollback(); err != nil {
		m.log.Errorf("error rolling back changes: %v", err)
		m.reload()
	}
}

// reload reads the committed state of every tree, used when the undo
// functions could not run.
func (m *MerkleTrees) reload() {
	m.undo = nil
	for id, t := range m.appendOnly {
		if err := t.Reload(m.db); err != nil {
			m.log.Errorf("error reloading tree %s: %v", id, err)
		}
	}
	if err := m.publicData.Reload(m.db); err != nil {
		m.log.Errorf("error reloading tree %s: %v", l2block.PublicDataTree, err)
	}
}

// Commit persists the staged changes.
func (m *MerkleTrees) Commit(ctx context.Context) error {
	return m.run(ctx, m.commit)
}

// Rollback discards the staged changes.
func (m *MerkleTrees) Rollback(ctx context.Context) error {
	return m.run(ctx, func() error {
		m.rollback()
		return nil
	})
}

// HandleL2Block makes the committed state match the end of block. If the
// staged changes already produce it, as happens with blocks built by this
// node, they are committed. Otherwise they are discarded and the deltas of the
// block applied. Any mismatch leaves the committed state untouched.
func (m *MerkleTrees) HandleL2Block(ctx context.Context, block l2block.L2Block) error {
	return m.run(ctx, func() error {
		latest, err := m.snapshots(true)
		if err != nil {
			return err
		}
		if latest == block.EndSnapshots {
			m.log.Debugf("block %d matches the staged changes", block.Number)
			return m.finishBlock(block)
		}

		m.rollback()
		if err := m.applyBlock(block); err != nil {
			m.rollback()
			return err
		}
		return m.finishBlock(block)
	})
}

func (m *MerkleTrees) applyBlock(block l2block.L2Block) error {
	current, err := m.snapshots(true)
	if err != nil {
		return err
	}
	if current != block.StartSnapshots {
		return fmt.Errorf("%w: start snapshots of block %d differ from the current state", ErrBlockMismatch, block.Number)
	}

	deltas := []struct {
		id     l2block.TreeID
		leaves []common.Hash
	}{
		{l2block.ContractTree, block.NewContracts},
		{l2block.NullifierTree, block.NewNullifiers},
		{l2block.PrivateDataTree, block.NewCommitments},
		{l2block.L1ToL2MessageTree, block.NewL1ToL2Messages},
	}
	for _, d := range deltas {
		if err := m.appendLeaves(d.id, d.leaves); err != nil {
			return err
		}
	}
	if len(block.NewPublicDataWrites) > 0 {
		writes := make([]treetypes.Leaf, 0, len(block.NewPublicDataWrites))
		for _, w := range block.NewPublicDataWrites {
			writes = append(writes, treetypes.Leaf{Index: w.LeafIndex, Hash: w.NewValue})
		}
		if err := m.updateLeaves(l2block.PublicDataTree, writes); err != nil {
			return err
		}
	}
	if err := m.appendBlockHash(block.Number); err != nil {
		return err
	}

	end, err := m.snapshots(true)
	if err != nil {
		return err
	}
	if end != block.EndSnapshots {
		return fmt.Errorf("%w: end snapshots of block %d differ from the resulting state", ErrBlockMismatch, block.Number)
	}
	return nil
}

// appendBlockHash adds the global state hash of the latest roots to the
// blocks tree.
func (m *MerkleTrees) appendBlockHash(number uint64) error {
	var roots [l2block.NumTrees]common.Hash
	for _, id := range l2block.AllTrees {
		info, err := m.info(id, true)
		if err != nil {
			return err
		}
		roots[id] = info.Root
	}
	return m.appendLeaves(l2block.BlocksTree, []common.Hash{l2block.GlobalStateHash(number, roots)})
}

// AppendBlockHash stages the global state hash of the latest roots for the
// block number, the last step of building a block.
func (m *MerkleTrees) AppendBlockHash(ctx context.Context, number uint64) error {
	return m.run(ctx, func() error {
		if err := m.appendBlockHash(number); err != nil {
			m.rollback()
			return err
		}
		return nil
	})
}

// StageBlock stages a new block in a single step: nullifiers and commitments
// are appended and then the block hash for number. It returns the snapshots
// before and after. On error the staged changes are discarded.
func (m *MerkleTrees) StageBlock(
	ctx context.Context, number uint64, nullifiers, commitments []common.Hash,
) (l2block.Snapshots, l2block.Snapshots, error) {
	var start, end l2block.Snapshots
	err := m.run(ctx, func() error {
		var err error
		if start, err = m.snapshots(true); err != nil {
			return fmt.Errorf("error getting start snapshots: %w", err)
		}
		if err = m.stageBlock(number, nullifiers, commitments); err != nil {
			m.rollback()
			return err
		}
		if end, err = m.snapshots(true); err != nil {
			m.rollback()
			return fmt.Errorf("error getting end snapshots: %w", err)
		}
		return nil
	})
	return start, end, err
}

func (m *MerkleTrees) stageBlock(number uint64, nullifiers, commitments []common.Hash) error {
	if err := m.appendLeaves(l2block.NullifierTree, nullifiers); err != nil {
		return err
	}
	if err := m.appendLeaves(l2block.PrivateDataTree, commitments); err != nil {
		return err
	}
	return m.appendBlockHash(number)
}

func (m *MerkleTrees) finishBlock(block l2block.L2Block) error {
	if err := m.ensureStaged(); err != nil {
		return err
	}
	data, err := block.Encode()
	if err != nil {
		m.rollback()
		return fmt.Errorf("error encoding block %d: %w", block.Number, err)
	}
	if _, err := m.staged.Exec(
		`INSERT OR REPLACE INTO block (num, hash, data) VALUES ($1, $2, $3);`,
		block.Number, block.Hash().Hex(), data,
	); err != nil {
		m.rollback()
		return fmt.Errorf("error storing block %d: %w", block.Number, err)
	}
	if _, err := m.staged.Exec(
		`INSERT OR REPLACE INTO synced_block (id, num) VALUES (1, $1);`, block.Number,
	); err != nil {
		m.rollback()
		return fmt.Errorf("error storing synced block %d: %w", block.Number, err)
	}
	return m.commit()
}

// GetSyncedBlock returns the number of the last block handled, 0 if none.
func (m *MerkleTrees) GetSyncedBlock(ctx context.Context) (uint64, error) {
	return call(ctx, m, func() (uint64, error) {
		var row syncedBlockRow
		err := meddler.QueryRow(m.db, &row, `SELECT * FROM synced_block WHERE id = 1;`)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return row.Num, err
	})
}

// GetBlockNumber returns the number of the last block stored.
func (m *MerkleTrees) GetBlockNumber(ctx context.Context) (uint64, error) {
	return m.GetSyncedBlock(ctx)
}

// GetBlocks returns up to limit stored blocks starting at from.
func (m *MerkleTrees) GetBlocks(ctx context.Context, from uint64, limit int) ([]l2block.L2Block, error) {
	return call(ctx, m, func() ([]l2block.L2Block, error) {
		var rows []*blockRow
		err := meddler.QueryAll(
			m.db, &rows,
			`SELECT * FROM block WHERE num >= $1 ORDER BY num ASC LIMIT $2;`, from, limit,
		)
		if err != nil {
			return nil, err
		}
		blocks := make([]l2block.L2Block, 0, len(rows))
		for _, row := range rows {
			b, err := l2block.DecodeL2Block(row.Data)
			if err != nil {
				return nil, fmt.Errorf("error decoding stored block %d: %w", row.Num, err)
			}
			blocks = append(blocks, b)
		}
		return blocks, nil
	})
}

// Stop discards the staged changes and closes the DB. Pending operations fail.
func (m *MerkleTrees) Stop(ctx context.Context) error {
	if err := m.queue.Cancel(ctx); err != nil {
		return err
	}
	m.rollback()
	return m.db.Close()
}
