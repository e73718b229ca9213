package migrations

import (
	_ "embed"

	"github.com/0xPolygon/cdk-l2node/db/types"
	"github.com/0xPolygon/cdk-l2node/l2block"
	treemigrations "github.com/0xPolygon/cdk-l2node/tree/migrations"
)

//go:embed merkletrees0001.sql
var mig001 string

// TreePrefix is the prefix of the tables of the given tree.
func TreePrefix(id l2block.TreeID) string {
	return id.String() + "_"
}

// Migrations returns the migrations of every tree plus the ones of the block
// archive.
func Migrations() []types.Migration {
	migrations := []types.Migration{
		{
			ID:  "merkletrees0001",
			SQL: mig001,
		},
	}
	for _, id := range l2block.AllTrees {
		migrations = append(migrations, treemigrations.Migrations(TreePrefix(id))...)
	}
	return migrations
}
