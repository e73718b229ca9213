package db

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

func init() {
	meddler.Default = meddler.SQLite
	meddler.Register("hash", HashMeddler{})
}

// HashMeddler stores a common.Hash as its hex string. Fields use it with the
// "hash" tag: `meddler:"column,hash"`.
type HashMeddler struct{}

func (HashMeddler) PreRead(fieldAddr interface{}) (interface{}, error) {
	return new(string), nil
}

func (HashMeddler) PostRead(fieldPtr, scanTarget interface{}) error {
	s, ok := scanTarget.(*string)
	if !ok || s == nil {
		return errors.New("HashMeddler.PostRead: scan target is not a *string")
	}
	field, ok := fieldPtr.(*common.Hash)
	if !ok {
		return fmt.Errorf("HashMeddler.PostRead: unexpected field type %T", fieldPtr)
	}
	*field = common.HexToHash(*s)
	return nil
}

func (HashMeddler) PreWrite(field interface{}) (interface{}, error) {
	h, ok := field.(common.Hash)
	if !ok {
		return nil, fmt.Errorf("HashMeddler.PreWrite: unexpected field type %T", field)
	}
	return h.Hex(), nil
}
