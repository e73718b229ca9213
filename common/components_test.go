package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateComponents(t *testing.T) {
	require.NoError(t, ValidateComponents(nil))
	require.NoError(t, ValidateComponents([]string{SEQUENCER, RPC}))

	err := ValidateComponents([]string{RPC, "aggregator"})
	require.ErrorIs(t, err, ErrUnknownComponent)
	require.ErrorContains(t, err, "aggregator")
}
