package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	l2node "github.com/0xPolygon/cdk-l2node"
	"github.com/0xPolygon/cdk-l2node/blockbuilder"
	l2common "github.com/0xPolygon/cdk-l2node/common"
	"github.com/0xPolygon/cdk-l2node/config"
	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/0xPolygon/cdk-l2node/merkletrees"
	"github.com/0xPolygon/cdk-l2node/publisher"
	"github.com/0xPolygon/cdk-l2node/rpc"
	"github.com/0xPolygon/cdk-l2node/sequencer"
	"github.com/0xPolygon/cdk-l2node/txpool"
	"github.com/0xPolygon/cdk-l2node/worldstate"
	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/zkevm-ethtx-manager/ethtxmanager"
	ethtxlog "github.com/0xPolygon/zkevm-ethtx-manager/log"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const stopTimeout = 10 * time.Second

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		l2node.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	components := cliCtx.StringSlice(config.FlagComponents)
	if err := l2common.ValidateComponents(components); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(cliCtx.Context)
	defer cancel()

	trees, l1Client, err := openBackends(ctx, *c, components)
	if err != nil {
		return err
	}

	ws := worldstate.New(c.WorldState, trees, rpc.NewClient(c.BlockSource.URL))

	var (
		pool *txpool.MemoryPool
		seq  *sequencer.Sequencer
	)
	if isNeeded([]string{l2common.SEQUENCER}, components) {
		pool = txpool.NewMemoryPool()
		ws.OnBlockApplied(pool.HandleL2Block)
		seq = createSequencer(*c, ws, pool, l1Client)
	}

	if isNeeded([]string{l2common.RPC}, components) {
		server := createRPC(c.RPC, ws, pool, trees)
		go func() {
			if err := server.Start(); err != nil {
				log.Fatal(err)
			}
		}()
	}

	go func() {
		if err := syncAndSequence(ctx, ws, pool, seq); err != nil {
			log.Fatal(err)
		}
	}()

	waitSignal(func() {
		if seq != nil {
			seq.Stop()
		}
		cancel()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
		defer stopCancel()
		if err := ws.Stop(stopCtx); err != nil {
			log.Errorf("error stopping the world state: %v", err)
		}
	})

	return nil
}

// syncAndSequence waits for the world state to catch up, resumes the pool
// from its height and then starts the sequencer. pool and seq may be nil.
func syncAndSequence(
	ctx context.Context, ws *worldstate.Synchroniser, pool *txpool.MemoryPool, seq *sequencer.Sequencer,
) error {
	if err := ws.Start(ctx); err != nil {
		return fmt.Errorf("error starting the world state: %w", err)
	}
	synced := ws.Status().SyncedToL2Block
	log.Infof("world state synced to block %d", synced)
	if pool != nil {
		// blocks already in the trees before this run are never handed to the pool
		pool.SetSyncedBlock(synced)
	}
	if seq != nil {
		seq.Start(ctx)
	}
	return nil
}

// openBackends opens the merkle trees and, if the sequencer runs, dials L1.
func openBackends(
	ctx context.Context, c config.Config, components []string,
) (*merkletrees.MerkleTrees, *ethclient.Client, error) {
	var (
		trees    *merkletrees.MerkleTrees
		l1Client *ethclient.Client
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trees, err = merkletrees.New(gctx, c.MerkleTrees)
		if err != nil {
			return fmt.Errorf("failed to open the merkle trees at %s: %w", c.MerkleTrees.DBPath, err)
		}
		return nil
	})
	if isNeeded([]string{l2common.SEQUENCER}, components) {
		g.Go(func() error {
			var err error
			log.Debugf("dialing L1 client at: %s", c.L1.URL)
			l1Client, err = ethclient.DialContext(gctx, c.L1.URL)
			if err != nil {
				return fmt.Errorf("failed to create client for L1 using URL: %s. Err:%w", c.L1.URL, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return trees, l1Client, nil
}

func createSequencer(
	c config.Config,
	ws *worldstate.Synchroniser,
	pool *txpool.MemoryPool,
	l1Client *ethclient.Client,
) *sequencer.Sequencer {
	c.Publisher.EthTxManager.Log = ethtxlog.Config{
		Environment: ethtxlog.LogEnvironment(c.Log.Environment),
		Level:       c.Log.Level,
		Outputs:     c.Log.Outputs,
	}
	ethTxManager, err := ethtxmanager.New(c.Publisher.EthTxManager)
	if err != nil {
		log.Fatal(err)
	}
	go ethTxManager.Start()

	pub, err := publisher.New(c.Publisher, ethTxManager, l1Client)
	if err != nil {
		log.Fatal(err)
	}
	builder := blockbuilder.New(ws, c.L1.ChainID, c.L1.Version)
	seq, err := sequencer.New(c.Sequencer, pool, ws, builder, pub)
	if err != nil {
		log.Fatal(err)
	}
	return seq
}

func createRPC(
	cfg jRPC.Config,
	ws *worldstate.Synchroniser,
	pool *txpool.MemoryPool,
	trees *merkletrees.MerkleTrees,
) *jRPC.Server {
	logger := log.WithFields("module", l2common.RPC)
	var txAdder rpc.TxAdder
	if pool != nil {
		txAdder = pool
	}
	services := []jRPC.Service{
		{
			Name: rpc.L2NODE,
			Service: rpc.NewL2NodeEndpoints(
				logger,
				cfg.WriteTimeout.Duration,
				cfg.ReadTimeout.Duration,
				ws,
				txAdder,
				trees,
			),
		},
	}

	return jRPC.NewServer(cfg, services, jRPC.WithLogger(logger.GetSugaredLogger()))
}

func logVersion() {
	v := l2node.GetVersion()
	// version is already logged by default
	log.Infow("Starting application", v.KeyValues()...)
}

func waitSignal(stop func()) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt)

	for sig := range signals {
		switch sig {
		case os.Interrupt, os.Kill:
			log.Info("terminating application gracefully...")
			stop()
			os.Exit(0)
		}
	}
}

func isNeeded(casesWhereNeeded, actualCases []string) bool {
	for _, actualCase := range actualCases {
		for _, caseWhereNeeded := range casesWhereNeeded {
			if actualCase == caseWhereNeeded {
				return true
			}
		}
	}

	return false
}
