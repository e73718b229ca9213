package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func mandatoryVars() FileData {
	return FileData{Name: "mandatory_vars", Content: DefaultMandatoryVars}
}

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := LoadFile([]FileData{mandatoryVars()}, "")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.Equal(t, "/tmp/l2node/l2node.sqlite", cfg.MerkleTrees.DBPath)
	require.Equal(t, "http://localhost:5576", cfg.BlockSource.URL)
	require.Equal(t, "http://localhost:8545", cfg.L1.URL)
	require.Equal(t, uint64(31337), cfg.L1.ChainID)
	require.Equal(t, uint64(1), cfg.L1.Version)
	require.Equal(t, 100*time.Millisecond, cfg.WorldState.BlockCheckInterval.Duration)
	require.Equal(t, 1000, cfg.WorldState.L2QueueSize)
	require.Equal(t, 32, cfg.Sequencer.MaxTxsPerBlock)
	require.Equal(t, 32, cfg.Sequencer.TxSlotsPerBlock)
	require.Equal(t, time.Second, cfg.Sequencer.TxPollingInterval.Duration)
	require.Equal(t, uint64(1), cfg.Publisher.RequiredConfirmations)
	require.Equal(t, "http://localhost:8545", cfg.Publisher.EthTxManager.Etherman.URL)
	require.Equal(t, uint64(31337), cfg.Publisher.EthTxManager.Etherman.L1ChainID)
	require.Len(t, cfg.Publisher.EthTxManager.PrivateKeys, 1)
	require.Equal(t, "/app/sequencer.keystore", cfg.Publisher.EthTxManager.PrivateKeys[0].Path)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	rollup := common.HexToAddress("0x1Fe038B54aeBf558638CA51C91bC8cCa06609e91")
	custom := FileData{Name: "custom", Content: `
RollupAddr = "` + rollup.Hex() + `"
PathRWData = "/data"

[Sequencer]
  MaxTxsPerBlock = 8
  MinTxsPerBlock = 2
`}
	cfg, err := LoadFile([]FileData{mandatoryVars(), custom}, "")
	require.NoError(t, err)

	require.Equal(t, "/data/l2node.sqlite", cfg.MerkleTrees.DBPath)
	require.Equal(t, 8, cfg.Sequencer.MaxTxsPerBlock)
	require.Equal(t, 2, cfg.Sequencer.MinTxsPerBlock)
	require.Equal(t, rollup, cfg.L1.RollupAddr)
	require.Equal(t, rollup, cfg.Publisher.RollupAddr)
}

func TestLoadFileMissingMandatoryVars(t *testing.T) {
	_, err := LoadFile(nil, "")
	require.ErrorIs(t, err, ErrMissingVars)
}

func TestLoadFileInvalidConfig(t *testing.T) {
	custom := FileData{Name: "custom", Content: `
[Sequencer]
  MaxTxsPerBlock = 64
`}
	_, err := LoadFile([]FileData{mandatoryVars(), custom}, "")
	require.ErrorIs(t, err, ErrInvalidConfig)

	custom = FileData{Name: "custom", Content: `
[MerkleTrees]
  DBPath = ""
`}
	_, err = LoadFile([]FileData{mandatoryVars(), custom}, "")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFileSavesRenderedConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFile([]FileData{mandatoryVars()}, dir)
	require.NoError(t, err)

	saved, err := os.ReadFile(filepath.Join(dir, SaveConfigFileName))
	require.NoError(t, err)
	require.NotContains(t, string(saved), "{{")

	cfg, err := LoadFileFromString(string(saved), ConfigType)
	require.NoError(t, err)
	require.Equal(t, "/tmp/l2node/l2node.sqlite", cfg.MerkleTrees.DBPath)
	require.Equal(t, 32, cfg.Sequencer.MaxTxsPerBlock)
}

func TestReadFilesConvertsJSON(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "network.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"L1URL": "http://l1:8545"}`), 0600))

	files, err := readFiles([]string{jsonPath})
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Contains(t, files[0].Content, `L1URL = "http://l1:8545"`)

	cfg, err := LoadFile(append([]FileData{mandatoryVars()}, files...), "")
	require.NoError(t, err)
	require.Equal(t, "http://l1:8545", cfg.L1.URL)
	require.Equal(t, "http://l1:8545", cfg.Publisher.EthTxManager.Etherman.URL)

	_, err = readFiles([]string{filepath.Join(dir, "missing.toml")})
	require.Error(t, err)
}
