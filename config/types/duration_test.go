package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDurationUnmarshal(t *testing.T) {
	tcs := []struct {
		input          string
		expectedResult time.Duration
		expectedErr    bool
	}{
		{input: "10s", expectedResult: 10 * time.Second},
		{input: "100ms", expectedResult: 100 * time.Millisecond},
		{input: "1m30s", expectedResult: 90 * time.Second},
		{input: "ten seconds", expectedErr: true},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			var d Duration
			err := d.UnmarshalText([]byte(tc.input))
			if tc.expectedErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectedResult, d.Duration)

			text, err := d.MarshalText()
			require.NoError(t, err)
			var back Duration
			require.NoError(t, back.UnmarshalText(text))
			require.Equal(t, d, back)
		})
	}
}

func TestDurationJSONSchema(t *testing.T) {
	s := NewDuration(time.Second).JSONSchema()
	require.Equal(t, "string", s.Type)
	require.Equal(t, "Duration", s.Title)
}
