package migrations

import (
	_ "embed"

	"github.com/0xPolygon/cdk-l2node/db/types"
)

//go:embed tree0001.sql
var mig001 string

// Migrations returns the migrations creating the tables of a tree whose
// table names start with prefix.
func Migrations(prefix string) []types.Migration {
	return []types.Migration{
		{
			ID:     "tree0001",
			SQL:    mig001,
			Prefix: prefix,
		},
	}
}
