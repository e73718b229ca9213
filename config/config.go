package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/0xPolygon/cdk-l2node/merkletrees"
	"github.com/0xPolygon/cdk-l2node/publisher"
	"github.com/0xPolygon/cdk-l2node/sequencer"
	"github.com/0xPolygon/cdk-l2node/worldstate"
	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	// FlagCfg is the flag for cfg.
	FlagCfg = "cfg"
	// FlagComponents is the flag for components.
	FlagComponents = "components"
	// FlagSaveConfigPath is the flag to save the final configuration file
	FlagSaveConfigPath = "save-config-path"
	// FlagMinConfig only prints the mandatory vars on the config command
	FlagMinConfig = "min-config"

	EnvVarPrefix       = "L2NODE"
	ConfigType         = "toml"
	SaveConfigFileName = "l2node_config.toml"

	DefaultCreationFilePermissions = os.FileMode(0600)
)

var ErrInvalidConfig = errors.New("invalid config")

// L1Config holds the settlement layer endpoints
type L1Config struct {
	// URL of the L1 RPC node
	URL string `mapstructure:"URL"`
	// ChainID is stamped on every block built by this node
	ChainID uint64 `mapstructure:"ChainID"`
	// Version is stamped on every block built by this node
	Version uint64 `mapstructure:"Version"`
	// RequiredConfirmations is the number of L1 blocks a published tx needs to be considered final
	RequiredConfirmations uint64 `mapstructure:"RequiredConfirmations"`
	// RollupAddr is the address of the rollup contract
	RollupAddr common.Address `mapstructure:"RollupAddr"`
	// InboxAddr is the address of the L1 to L2 messages inbox
	InboxAddr common.Address `mapstructure:"InboxAddr"`
	// ContractDeploymentEmitterAddr is the address of the contract announcing new contracts
	ContractDeploymentEmitterAddr common.Address `mapstructure:"ContractDeploymentEmitterAddr"`
	// UnverifiedDataEmitterAddr is the address of the contract receiving the unverified data
	UnverifiedDataEmitterAddr common.Address `mapstructure:"UnverifiedDataEmitterAddr"`
}

// BlockSourceConfig points to the node serving the settled L2 blocks
type BlockSourceConfig struct {
	// URL of the l2node RPC serving the blocks
	URL string `mapstructure:"URL"`
}

/*
Config represents the configuration of the entire L2 node
The file is [TOML format]

[TOML format]: https://en.wikipedia.org/wiki/TOML
*/
type Config struct {
	// Configure Log level for all the services, allow also to store the logs in a file
	Log log.Config
	// MerkleTrees is the storage of the world state
	MerkleTrees merkletrees.Config
	// RPC is the config for the RPC server
	RPC jRPC.Config
	// BlockSource is where the settled blocks are downloaded from
	BlockSource BlockSourceConfig
	// L1 is the settlement layer
	L1 L1Config
	// WorldState is the config of the world state synchroniser
	WorldState worldstate.Config
	// Sequencer is the config of the block production loop
	Sequencer sequencer.Config
	// Publisher is the config of the L1 tx sender
	Publisher publisher.Config
}

// Validate checks the values that can not be fixed by defaults
func (c *Config) Validate() error {
	if c.MerkleTrees.DBPath == "" {
		return fmt.Errorf("%w: MerkleTrees.DBPath is empty", ErrInvalidConfig)
	}
	if c.WorldState.L2QueueSize <= 0 {
		return fmt.Errorf("%w: WorldState.L2QueueSize must be positive", ErrInvalidConfig)
	}
	if c.Sequencer.MaxTxsPerBlock > c.Sequencer.TxSlotsPerBlock {
		return fmt.Errorf("%w: Sequencer.MaxTxsPerBlock %d is greater than Sequencer.TxSlotsPerBlock %d",
			ErrInvalidConfig, c.Sequencer.MaxTxsPerBlock, c.Sequencer.TxSlotsPerBlock)
	}
	return nil
}

// Load loads the configuration
func Load(ctx *cli.Context) (*Config, error) {
	configFilePath := ctx.StringSlice(FlagCfg)
	filesData, err := readFiles(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading files:  Err:%w", err)
	}
	saveConfigPath := ctx.String(FlagSaveConfigPath)
	return LoadFile(filesData, saveConfigPath)
}

func readFiles(files []string) ([]FileData, error) {
	result := make([]FileData, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %s. Err:%w", file, err)
		}
		fileContent := string(content)
		if ext := getFileExtension(file); ext != ConfigType {
			fileContent, err = convertFileToToml(fileContent, ext)
			if err != nil {
				return nil, fmt.Errorf("error converting file: %s from %s to TOML. Err:%w", file, ext, err)
			}
		}
		result = append(result, FileData{Name: file, Content: fileContent})
	}
	return result, nil
}

func getFileExtension(fileName string) string {
	return fileName[strings.LastIndex(fileName, ".")+1:]
}

// LoadFile renders the defaults merged with files and decodes the result.
// If saveConfigPath is set, the rendered config is written there.
func LoadFile(files []FileData, saveConfigPath string) (*Config, error) {
	fileData := make([]FileData, 0, len(files)+2) //nolint:mnd
	fileData = append(fileData,
		FileData{Name: "default_vars", Content: DefaultVars},
		FileData{Name: "default_values", Content: DefaultValues},
	)
	fileData = append(fileData, files...)

	renderedCfg, err := NewConfigRender(fileData, EnvVarPrefix).Render()
	if err != nil {
		return nil, err
	}
	if saveConfigPath != "" {
		if err := SaveConfig(renderedCfg, filepath.Join(saveConfigPath, SaveConfigFileName)); err != nil {
			log.Error(err)
			return nil, err
		}
	}
	return LoadFileFromString(renderedCfg, ConfigType)
}

// LoadFileFromString decodes an already rendered config
func LoadFileFromString(configFileData string, configType string) (*Config, error) {
	cfg := &Config{}
	if err := loadString(cfg, configFileData, configType, EnvVarPrefix); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the rendered config to fullPath, normalised as TOML
func SaveConfig(renderedCfg, fullPath string) error {
	var values map[string]interface{}
	if err := toml.Unmarshal([]byte(renderedCfg), &values); err != nil {
		return fmt.Errorf("error parsing rendered config: %w", err)
	}
	normalised, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("error encoding rendered config: %w", err)
	}
	if err := os.WriteFile(fullPath, normalised, DefaultCreationFilePermissions); err != nil {
		return fmt.Errorf("error writing config file: %s. Err: %w", fullPath, err)
	}
	log.Infof("config saved to %s", fullPath)
	return nil
}

func loadString(cfg *Config, configData string, configType string, envPrefix string) error {
	v := viper.New()
	v.SetConfigType(configType)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.ReadConfig(bytes.NewBufferString(configData)); err != nil {
		return err
	}
	decodeHooks := []viper.DecoderConfigOption{
		// this allows arrays to be decoded from env var separated by ",", example: MY_VAR="value1,value2,value3"
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(","))),
	}
	return v.Unmarshal(cfg, decodeHooks...)
}
