package tree

import (
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/0xPolygon/cdk-l2node/db"
	"github.com/0xPolygon/cdk-l2node/tree/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
	"golang.org/x/crypto/sha3"
)

var (
	ErrTreeFull = errors.New("tree is full")
)

// Tree holds the logic shared by the append only and the updatable trees:
// hashing, node storage and path walking. The in-memory state of each tree
// lives in the concrete types.
type Tree struct {
	zeroHashes []common.Hash
	rhtTable   string
	rootTable  string
	leafTable  string
}

func newTreeNode(left, right common.Hash) types.TreeNode {
	var hash common.Hash
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(left[:])
	hasher.Write(right[:])
	copy(hash[:], hasher.Sum(nil))
	return types.TreeNode{
		Hash:  hash,
		Left:  left,
		Right: right,
	}
}

func newTree(dbPrefix string) *Tree {
	return &Tree{
		zeroHashes: generateZeroHashes(types.DefaultHeight),
		rhtTable:   dbPrefix + "rht",
		rootTable:  dbPrefix + "root",
		leafTable:  dbPrefix + "leaf",
	}
}

// EmptyRoot is the root of a tree without leaves.
func (t *Tree) EmptyRoot() common.Hash {
	return t.zeroHashes[types.DefaultHeight]
}

func (t *Tree) getSiblings(q db.Querier, index uint32, root common.Hash) (types.Proof, error) {
	var siblings types.Proof
	currentNodeHash := root
	// It starts in height-1 because 0 is the level of the leafs
	for h := int(types.DefaultHeight - 1); h >= 0; h-- {
		if currentNodeHash == t.zeroHashes[h+1] {
			// empty subtree: every sibling below is empty as well
			for ; h >= 0; h-- {
				siblings[h] = t.zeroHashes[h]
			}
			break
		}
		currentNode, err := t.getRHTNode(q, currentNodeHash)
		if err != nil {
			return siblings, fmt.Errorf(
				"height: %d, currentNode: %s, error: %w",
				h, currentNodeHash.Hex(), err,
			)
		}
		/*
		*        Root                (level h=3 => height=4)
		*      /     \
		*	 O5       O6             (level h=2)
		*	/ \      / \
		*  O1  O2   O3  O4           (level h=1)
		*  /\   /\   /\ /\
		* 0  1 2  3 4 5 6 7 Leafs    (level h=0)
		* index = 3 => 011 binary, at level 1 (1<<h = 010) the AND is > 0,
		* so the path goes right and the sibling is the left node (O1)
		 */
		if index&(1<<h) > 0 {
			siblings[h] = currentNode.Left
			currentNodeHash = currentNode.Right
		} else {
			siblings[h] = currentNode.Right
			currentNodeHash = currentNode.Left
		}
	}

	return siblings, nil
}

// SiblingPath returns the merkle proof of the leaf at index for the given root.
// siblings[0] is the sibling of the leaf itself.
func (t *Tree) SiblingPath(q db.Querier, index uint32, root common.Hash) (types.Proof, error) {
	return t.getSiblings(q, index, root)
}

func (t *Tree) getRHTNode(q db.Querier, nodeHash common.Hash) (*types.TreeNode, error) {
	node := &types.TreeNode{}
	err := meddler.QueryRow(
		q, node,
		fmt.Sprintf(`SELECT * FROM %s WHERE hash = $1;`, t.rhtTable),
		nodeHash.Hex(),
	)
	if err != nil {
		return node, db.ReturnErrNotFound(err)
	}
	return node, nil
}

func generateZeroHashes(height uint8) []common.Hash {
	var zeroHashes = []common.Hash{
		{},
	}
	// This generates a leaf = HashZero in position 0. In the rest of the positions that are equivalent to the ascending levels,
	// we set the hashes of the nodes. So all nodes from level i=5 will have the same value and same children nodes.
	for i := 1; i <= int(height); i++ {
		zeroHashes = append(zeroHashes, newTreeNode(zeroHashes[i-1], zeroHashes[i-1]).Hash)
	}
	return zeroHashes
}

// storeNodes persists the nodes, identical subtrees share their rows.
func (t *Tree) storeNodes(q db.Querier, nodes []types.TreeNode) error {
	query := fmt.Sprintf(
		`INSERT OR IGNORE INTO %s (hash, left_hash, right_hash) VALUES ($1, $2, $3);`, t.rhtTable,
	)
	for _, node := range nodes {
		if _, err := q.Exec(query, node.Hash.Hex(), node.Left.Hex(), node.Right.Hex()); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) storeRoot(q db.Querier, root types.Root) error {
	_, err := q.Exec(
		fmt.Sprintf(`INSERT OR REPLACE INTO %s (position, hash, next_index) VALUES ($1, $2, $3);`, t.rootTable),
		root.Position, root.Hash.Hex(), root.NextIndex,
	)
	return err
}

func (t *Tree) storeLeaf(q db.Querier, leaf types.Leaf) error {
	_, err := q.Exec(
		fmt.Sprintf(`INSERT OR REPLACE INTO %s (position, value) VALUES ($1, $2);`, t.leafTable),
		leaf.Index, leaf.Hash.Hex(),
	)
	return err
}

// LastRoot returns the last checkpoint visible to q, or db.ErrNotFound if the
// tree never had a leaf.
func (t *Tree) LastRoot(q db.Querier) (types.Root, error) {
	var root types.Root
	err := meddler.QueryRow(
		q, &root,
		fmt.Sprintf(`SELECT * FROM %s ORDER BY position DESC LIMIT 1;`, t.rootTable),
	)
	if err != nil {
		return root, db.ReturnErrNotFound(err)
	}
	return root, nil
}

// InfoAt returns the state of the tree as seen by q.
func (t *Tree) InfoAt(q db.Querier) (types.Info, error) {
	root, err := t.LastRoot(q)
	if errors.Is(err, db.ErrNotFound) {
		return types.Info{Root: t.EmptyRoot()}, nil
	}
	if err != nil {
		return types.Info{}, err
	}
	return types.Info{Root: root.Hash, NextIndex: root.NextIndex}, nil
}

// LeafIndex returns the lowest index holding value.
func (t *Tree) LeafIndex(q db.Querier, value common.Hash) (uint32, error) {
	var index uint32
	err := q.QueryRow(
		fmt.Sprintf(`SELECT position FROM %s WHERE value = $1 ORDER BY position ASC LIMIT 1;`, t.leafTable),
		value.Hex(),
	).Scan(&index)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, db.ErrNotFound
	}
	return index, err
}

// LeafValue returns the value stored at index.
func (t *Tree) LeafValue(q db.Querier, index uint32) (common.Hash, error) {
	var value string
	err := q.QueryRow(
		fmt.Sprintf(`SELECT value FROM %s WHERE position = $1;`, t.leafTable), index,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return common.Hash{}, db.ErrNotFound
	}
	if err != nil {
		return common.Hash{}, err
	}
	return common.HexToHash(value), nil
}

func checkCapacity(nextIndex uint32, toAdd int) error {
	if uint64(nextIndex)+uint64(toAdd) > math.MaxUint32 {
		return fmt.Errorf("%w: next index %d, adding %d", ErrTreeFull, nextIndex, toAdd)
	}
	return nil
}
