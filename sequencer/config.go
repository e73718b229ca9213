package sequencer

import (
	"github.com/0xPolygon/cdk-l2node/config/types"
)

// Config is the configuration of the sequencer
type Config struct {
	// TxPollingInterval is the time between two attempts to build a block
	TxPollingInterval types.Duration `mapstructure:"TxPollingInterval"`
	// PublishRetryInterval is the time to wait before retrying after a failed round
	PublishRetryInterval types.Duration `mapstructure:"PublishRetryInterval"`
	// MaxTxsPerBlock is the maximum amount of txs taken from the pool for a block
	MaxTxsPerBlock int `mapstructure:"MaxTxsPerBlock"`
	// MinTxsPerBlock is the amount of pending txs needed to build a block
	MinTxsPerBlock int `mapstructure:"MinTxsPerBlock"`
	// TxSlotsPerBlock is the amount of txs every block has, filled with empty txs
	TxSlotsPerBlock int `mapstructure:"TxSlotsPerBlock"`
	// RetryAfterErrorPeriod is the time to wait between attempts of the initial sync
	RetryAfterErrorPeriod types.Duration `mapstructure:"RetryAfterErrorPeriod"`
	// MaxRetryAttemptsAfterError is the maximum attempts of the initial sync, -1 means no limit
	MaxRetryAttemptsAfterError int `mapstructure:"MaxRetryAttemptsAfterError"`
}
