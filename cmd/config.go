package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/0xPolygon/cdk-l2node/config"
	"github.com/invopop/jsonschema"
	"github.com/urfave/cli/v2"
)

func configCmd(cliCtx *cli.Context) error {
	// String buffer to concatenate all the default config vars
	defaultConfig := strings.Builder{}
	defaultConfig.WriteString(config.DefaultMandatoryVars)
	if !cliCtx.Bool(config.FlagMinConfig) {
		defaultConfig.WriteString(config.DefaultVars)
		defaultConfig.WriteString(config.DefaultValues)
	}

	_, err := os.Stdout.WriteString(defaultConfig.String())
	return err
}

func schemaCmd(*cli.Context) error {
	r := jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		FieldNameTag:              "mapstructure",
		AllowAdditionalProperties: true,
	}
	schema := r.Reflect(&config.Config{})
	schema.Title = "l2node config file"
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(out, '\n'))
	return err
}
