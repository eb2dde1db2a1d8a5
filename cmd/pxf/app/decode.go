package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/frankgh/pxf/cmd/pxf/config"
	"github.com/frankgh/pxf/pkg/params"
	"github.com/frankgh/pxf/pkg/request"
)

type decodeOptions struct {
	configFilename string
	paramsFilename string
}

func newDecodeCommand() *cobra.Command {
	opt := &decodeOptions{}
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "decode request parameters read from a toml file and print the descriptor",
		Long: `Decode request parameters read from a toml file and print the descriptor.

The file holds one key/value pair per parameter. The X-GP- prefix is optional:

  ALIGNMENT = "8"
  SEGMENT-ID = 0
  X-GP-OPTIONS-PROFILE = "HdfsTextSimple"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.Context(), opt, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opt.configFilename, "config", "c", "", "specify toml config file")
	cmd.Flags().StringVarP(&opt.paramsFilename, "file", "f", "", "specify toml request parameter file")
	cmd.MarkFlagRequired("file")
	return cmd
}

// readParams reads a flat toml table. Non-string values are taken in their
// toml text form.
func readParams(file string) (map[string]string, error) {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(file, &raw); err != nil {
		return nil, errors.Wrapf(err, "load request parameters %s", file)
	}
	kv := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]interface{}, []map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("parameter %s: scalar value expected", k)
		}
		kv[k] = fmt.Sprint(v)
	}
	return kv, nil
}

func loadConfig(file string) (*config.Config, error) {
	if file == "" {
		cfg := config.Conf
		cfg.Profiles.EtcdEnabled = false
		return &cfg, cfg.Validate()
	}
	if err := config.LoadFromFile(file); err != nil {
		return nil, err
	}
	return &config.Conf, nil
}

func runDecode(ctx context.Context, opt *decodeOptions, w io.Writer) error {
	cfg, err := loadConfig(opt.configFilename)
	if err != nil {
		return err
	}
	kv, err := readParams(opt.paramsFilename)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cat.Close()

	desc, err := request.Decode(params.New(kv), cat.registry)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(desc)
}
