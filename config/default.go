package config

// This values doesnt have a default value because depend on the
// environment / deployment
const DefaultMandatoryVars = `
# Layer 1 (Ethereum) RPC provider URL
L1URL = "http://localhost:8545"
# L1ChainID is the chain id of the L1 network
L1ChainID = 31337

# BlockSourceURL is the l2node RPC serving the settled L2 blocks.
# Usually the node itself or the node of the operator
BlockSourceURL = "http://localhost:5576"

# SequencerPrivateKeyPath is the path to the key signing the L1 txs
SequencerPrivateKeyPath = "/app/sequencer.keystore"
# SequencerPrivateKeyPassword is the password to the sequencer private key
SequencerPrivateKeyPassword = "test"

##################################################
# Addresses of the rollup contracts on L1
RollupAddr = "0x0000000000000000000000000000000000000000"
InboxAddr = "0x0000000000000000000000000000000000000000"
ContractDeploymentEmitterAddr = "0x0000000000000000000000000000000000000000"
UnverifiedDataEmitterAddr = "0x0000000000000000000000000000000000000000"
`

// This doesn't belong to config, but are the vars used
// to avoid repetition in config-files
const DefaultVars = `
PathRWData = "/tmp/l2node"
`

// DefaultValues is the default configuration
const DefaultValues = `
# This is the default configuration for the l2node

# Log configuration
[Log]
  # Environment is the environment where the node is running
  Environment = "development" # "production" or "development"
  # Level is the log level
  Level = "info"
  # Outputs are the outputs where the logs will be written
  Outputs = ["stderr"]

[MerkleTrees]
  # DBPath is the path of the sqlite database holding the trees
  DBPath = "{{PathRWData}}/l2node.sqlite"
  # LeafCacheSize is the number of leaf indexes kept in memory per tree
  LeafCacheSize = 10000

[RPC]
  # Host defines the network adapter that will be used to serve the HTTP requests
  Host = "0.0.0.0"
  # Port defines the port to serve the endpoints via HTTP
  Port = 5576
  # ReadTimeout is the HTTP server read timeout
  # check net/http.server.ReadTimeout and net/http.server.ReadHeaderTimeout
  ReadTimeout = "2s"
  # WriteTimeout is the HTTP server write timeout
  # check net/http.server.WriteTimeout
  WriteTimeout = "2s"
  # MaxRequestsPerIPAndSecond defines how much requests a single IP can
  # send within a single second
  MaxRequestsPerIPAndSecond = 10

[BlockSource]
  # URL is the l2node RPC the settled blocks are downloaded from
  URL = "{{BlockSourceURL}}"

[L1]
  URL = "{{L1URL}}"
  # ChainID and Version are stamped on every block built by this node
  ChainID = {{L1ChainID}}
  Version = 1
  RequiredConfirmations = 1
  RollupAddr = "{{RollupAddr}}"
  InboxAddr = "{{InboxAddr}}"
  ContractDeploymentEmitterAddr = "{{ContractDeploymentEmitterAddr}}"
  UnverifiedDataEmitterAddr = "{{UnverifiedDataEmitterAddr}}"

[WorldState]
  # BlockCheckInterval is the wait between polls of the block source
  BlockCheckInterval = "100ms"
  # BlockCollectTimeout is the max time spent downloading blocks on each sync round
  BlockCollectTimeout = "1s"
  # L2QueueSize is the number of downloaded blocks buffered before being applied
  L2QueueSize = 1000
  # RetryAfterErrorPeriod is the time that will be waited when an unexpected error happens before retry
  RetryAfterErrorPeriod = "1s"
  # MaxRetryAttemptsAfterError is the maximum number of consecutive attempts that will happen before panicing.
  # Any number smaller than zero will be considered as unlimited retries
  MaxRetryAttemptsAfterError = -1

[Sequencer]
  # TxPollingInterval is the wait between block production rounds
  TxPollingInterval = "1s"
  # PublishRetryInterval is the wait before the next round after a failed one
  PublishRetryInterval = "1s"
  MaxTxsPerBlock = 32
  MinTxsPerBlock = 1
  # TxSlotsPerBlock is the fixed number of txs of a block, padded with empty txs
  TxSlotsPerBlock = 32
  RetryAfterErrorPeriod = "1s"
  MaxRetryAttemptsAfterError = -1

[Publisher]
  RollupAddr = "{{L1.RollupAddr}}"
  UnverifiedDataEmitterAddr = "{{L1.UnverifiedDataEmitterAddr}}"
  RequiredConfirmations = {{L1.RequiredConfirmations}}
  # PublishRetryInterval is the wait between attempts to send a tx
  PublishRetryInterval = "1s"
  # WaitPeriodMonitorTx is the wait period to monitor the txs
  WaitPeriodMonitorTx = "100ms"
  # GasOffset is the amount of gas to be added to the gas estimation in order
  # to provide an amount that is higher than the estimated one.
  #
  #  ex:
  #  gas estimation: 1000
  #  gas offset: 100
  #  final gas: 1100
  GasOffset = 80000
  [Publisher.EthTxManager]
    # FrequencyToMonitorTxs frequency of the resending failed txs
    FrequencyToMonitorTxs = "1s"
    # WaitTxToBeMined time to wait after transaction was sent to the ethereum
    WaitTxToBeMined = "2m"
    # GetReceiptMaxTime is the max time to wait to get the receipt of the mined transaction
    GetReceiptMaxTime = "250ms"
    # GetReceiptWaitInterval is the time to sleep before trying to get the receipt of the mined transaction
    GetReceiptWaitInterval = "1s"
    # PrivateKeys defines all the key store files that are going
    # to be read in order to provide the private keys to sign the L1 txs
    PrivateKeys = [
      {Path = "{{SequencerPrivateKeyPath}}", Password = "{{SequencerPrivateKeyPassword}}"},
    ]
    # ForcedGas is the amount of gas to be forced in case of gas estimation error
    ForcedGas = 0
    # GasPriceMarginFactor is used to multiply the suggested gas price provided by the network
    GasPriceMarginFactor = 1
    # MaxGasPriceLimit caps the gas price of the txs, 0 means no limit
    MaxGasPriceLimit = 0
    # StoragePath is the path of the internal storage
    StoragePath = "{{PathRWData}}/ethtxmanager.sqlite"
    # ReadPendingL1Txs is a flag to enable the reading of pending L1 txs
    ReadPendingL1Txs = false
    # 0 means that the default value provided by the network will be used
    SafeStatusL1NumberOfBlocks = 0
    FinalizedStatusL1NumberOfBlocks = 0
    [Publisher.EthTxManager.Etherman]
      # URL is the URL of the Ethereum node for L1
      URL = "{{L1URL}}"
      # allow that L1 gas price calculation use multiples sources
      MultiGasProvider = false
      # L1ChainID is the chain ID of the L1
      L1ChainID = {{L1.ChainID}}
      HTTPHeaders = []
`
