package main

import (
	"os"

	l2node "github.com/0xPolygon/cdk-l2node"
	"github.com/0xPolygon/cdk-l2node/common"
	"github.com/0xPolygon/cdk-l2node/config"
	"github.com/0xPolygon/cdk-l2node/log"
	"github.com/urfave/cli/v2"
)

const appName = "l2node"

var (
	configFileFlag = cli.StringSliceFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file(s)",
		Required: true,
	}
	componentsFlag = cli.StringSliceFlag{
		Name:     config.FlagComponents,
		Aliases:  []string{"co"},
		Usage:    "List of components to run",
		Required: false,
		Value:    cli.NewStringSlice(common.SEQUENCER, common.RPC),
	}
	saveConfigFlag = cli.StringFlag{
		Name:     config.FlagSaveConfigPath,
		Aliases:  []string{"s"},
		Usage:    "Save final configuration into to the indicated path (name: " + config.SaveConfigFileName + ")",
		Required: false,
	}
	minConfigFlag = cli.BoolFlag{
		Name:     config.FlagMinConfig,
		Usage:    "Only print the vars that depend on the deployment",
		Required: false,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Version = l2node.Version
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:    "run",
			Aliases: []string{},
			Usage:   "Run the l2node",
			Action:  start,
			Flags:   []cli.Flag{&configFileFlag, &componentsFlag, &saveConfigFlag},
		},
		{
			Name:    "config",
			Aliases: []string{},
			Usage:   "Print the default configuration",
			Action:  configCmd,
			Flags:   []cli.Flag{&minConfigFlag},
		},
		{
			Name:    "schema",
			Aliases: []string{},
			Usage:   "Print the JSON schema of the configuration",
			Action:  schemaCmd,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}

func versionCmd(*cli.Context) error {
	l2node.PrintVersion(os.Stdout)
	return nil
}
