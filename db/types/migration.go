package types

// Migration is a single up/down SQL script. Prefix is substituted into the
// script wherever the /*dbprefix*/ placeholder appears, so the same script can
// create several independent sets of tables inside one database.
type Migration struct {
	ID     string
	SQL    string
	Prefix string
}
