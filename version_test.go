package l2node

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	data := GetVersion()
	require.NotEmpty(t, data.Version)
	require.NotEmpty(t, data.GitRev)
	require.NotEmpty(t, data.GoVersion)
	require.NotEmpty(t, data.OS)
	require.NotEmpty(t, data.Arch)

	kv := data.KeyValues()
	require.Len(t, kv, 10)
	require.Equal(t, "gitRevision", kv[0])
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintVersion(&buf)
	require.Contains(t, buf.String(), "Version:      "+Version)
	require.Contains(t, buf.String(), "OS/Arch:")
}
