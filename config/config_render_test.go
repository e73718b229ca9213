package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type renderCase struct {
	name           string
	files          []string
	env            map[string]string
	expectedMerged string
	expected       string
	expectedErr    error
}

func TestConfigRender(t *testing.T) {
	runRenderCases(t, []renderCase{
		{
			name:     "later files override earlier ones",
			files:    []string{"PathRWData=\"/a\"\n", "PathRWData=\"/b\"\nL1URL=\"x\"\n"},
			expected: "L1URL = \"x\"\nPathRWData = \"/b\"\n",
		},
		{
			name:     "var composed into a string",
			files:    []string{"PathRWData=\"/tmp\"\n", "DBPath=\"{{PathRWData}}/l2node.sqlite\"\n"},
			expected: "DBPath = \"/tmp/l2node.sqlite\"\nPathRWData = \"/tmp\"\n",
		},
		{
			name: "values keep their type",
			files: []string{
				"MaxTxsPerBlock={{MaxTxs}}\nEnvironment=\"{{LogEnv}}\"\nReadPendingL1Txs={{ReadPending}}\n",
				"LogEnv=\"development\"\nMaxTxs=32\nReadPending=false\n",
			},
			expected: "Environment = \"development\"\nLogEnv = \"development\"\nMaxTxs = 32\n" +
				"MaxTxsPerBlock = 32\nReadPending = false\nReadPendingL1Txs = false\n",
		},
		{
			name:        "missing var",
			files:       []string{"DBPath=\"{{PathRWData}}/db\"\n"},
			expected:    "DBPath = \"{{PathRWData}}/db\"\n",
			expectedErr: ErrMissingVars,
		},
	})
}

func TestConfigRenderCycles(t *testing.T) {
	runRenderCases(t, []renderCase{
		{
			name:           "two vars pointing to each other",
			files:          []string{"L1ChainID= {{ChainID}}\n", "ChainID= {{L1ChainID}}\n"},
			expectedMerged: "ChainID = {{L1ChainID}}\nL1ChainID = {{ChainID}}\n",
			expected:       "ChainID = {{L1ChainID}}\nL1ChainID = {{ChainID}}\n",
			expectedErr:    ErrCycleVars,
		},
		{
			name:        "var pointing to itself",
			files:       []string{"Port= {{Port}}\n", ""},
			expected:    "Port = {{Port}}\n",
			expectedErr: ErrCycleVars,
		},
		{
			name:     "chain resolved through several passes",
			files:    []string{"Port= {{RPCPort}}\n", "RPCPort= {{ServerPort}}\nServerPort=5576\n"},
			expected: "Port = 5576\nRPCPort = 5576\nServerPort = 5576\n",
		},
		{
			name:     "cycle broken by an env var",
			files:    []string{"Port= {{RPCPort}}\n", "RPCPort= {{ServerPort}}\nServerPort={{Port}}\n"},
			env:      map[string]string{"UTCR_RPCPort": "4"},
			expected: "Port = 4\nRPCPort = 4\nServerPort = 4\n",
		},
	})
}

func TestConfigRenderEnvVars(t *testing.T) {
	runRenderCases(t, []renderCase{
		{
			name:     "undefined var set as number",
			files:    []string{"ChainID={{L1ChainID}}\n"},
			env:      map[string]string{"UTCR_L1ChainID": "4"},
			expected: "ChainID = 4\n",
		},
		{
			// the exported value carries the quotes
			name:     "undefined var set as string",
			files:    []string{"ChainID={{L1ChainID}}\n"},
			env:      map[string]string{"UTCR_L1ChainID": "\"4\""},
			expected: "ChainID = \"4\"\n",
		},
		{
			name:     "env var wins over the file value",
			files:    []string{"URL=\"http://a\"\n", "BlockSourceURL=\"{{URL}}\"\n"},
			env:      map[string]string{"UTCR_URL": "b"},
			expected: "BlockSourceURL = \"b\"\nURL = \"http://a\"\n",
		},
	})
}

func TestConfigRenderNestedTables(t *testing.T) {
	defaults := `
		[L1]
	URL="http://generic_url"
	ChainID=31337
	[L1.Etherman]
		URL="http://localhost:8545"
`
	custom := `
		[L1.Etherman]
		URL="{{L1.URL}}"
	`
	runRenderCases(t, []renderCase{
		{
			name:     "var pointing to a key of another table",
			files:    []string{defaults, custom},
			expected: "\n[L1]\n  ChainID = 31337\n  URL = \"http://generic_url\"\n\n  [L1.Etherman]\n    URL = \"http://generic_url\"\n",
		},
		{
			// L1.URL itself is not a var, the env var only changes it at the viper stage
			name:     "dotted var set by env var",
			files:    []string{defaults, custom},
			env:      map[string]string{"UTCR_L1_URL": "env"},
			expected: "\n[L1]\n  ChainID = 31337\n  URL = \"http://generic_url\"\n\n  [L1.Etherman]\n    URL = \"env\"\n",
		},
	})
}

func TestConfigRenderInvalidFile(t *testing.T) {
	sut := newTestRender([]string{"A = = 1\n"}, nil)
	_, err := sut.Render()
	require.ErrorContains(t, err, "file0")
}

func TestConfigRenderConvertFileToToml(t *testing.T) {
	jsonFile := `{
  "L1URL": "http://l1:8545",
  "L1ChainID": 271828,
  "L1": {
    "RequiredConfirmations": 2,
    "RollupAddr": "0x1Fe038B54aeBf558638CA51C91bC8cCa06609e91"
  }
}
`
	data, err := convertFileToToml(jsonFile, "json")
	require.NoError(t, err)
	require.Equal(t, "L1ChainID = 271828.0\nL1URL = \"http://l1:8545\"\n\n[L1]\n"+
		"  RequiredConfirmations = 2.0\n  RollupAddr = \"0x1Fe038B54aeBf558638CA51C91bC8cCa06609e91\"\n", data)

	_, err = convertFileToToml("a: 1", "yaml")
	require.ErrorIs(t, err, ErrUnsupportedConfigFileType)

	data, err = convertFileToToml("A = 1\n", "conf")
	require.NoError(t, err)
	require.Equal(t, "A = 1\n", data)
}

func newTestRender(files []string, env map[string]string) *ConfigRender {
	filesData := make([]FileData, len(files))
	for i, content := range files {
		filesData[i] = FileData{Name: fmt.Sprintf("file%d", i), Content: content}
	}
	return &ConfigRender{
		FilesData: filesData,
		LookupEnvFunc: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		EnvironmentPrefix: "UTCR",
	}
}

func runRenderCases(t *testing.T, cases []renderCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sut := newTestRender(tc.files, tc.env)
			if tc.expectedMerged != "" {
				merged, err := sut.Merge()
				require.NoError(t, err)
				require.Equal(t, tc.expectedMerged, merged)
			}
			res, err := sut.Render()
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tc.expected, res)
		})
	}
}
