package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/frankgh/pxf/pkg/profile"
)

// styleList renders a table without borders or separators.
var styleList = table.Style{
	Name:    "StyleList",
	Box:     table.StyleBoxDefault,
	Color:   table.ColorOptionsDefault,
	Format:  table.FormatOptionsDefault,
	HTML:    table.DefaultHTMLOptions,
	Options: table.OptionsNoBordersAndSeparators,
	Title:   table.TitleOptionsDefault,
}

func newProfilesCommand() *cobra.Command {
	var configFilename string
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "list the profile catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFilename)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer cat.Close()
			printProfiles(cmd.OutOrStdout(), cat.registry)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFilename, "config", "c", "", "specify toml config file")
	return cmd
}

func printProfiles(w io.Writer, reg *profile.Registry) {
	t := table.NewWriter()
	t.SetStyle(styleList)
	t.SetOutputMirror(w)

	kinds := profile.PluginKinds()
	header := table.Row{"NAME"}
	for _, k := range kinds {
		header = append(header, strings.ToUpper(k))
	}
	t.AppendHeader(append(header, "OPTIONS"))

	for _, name := range reg.Names() {
		p, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		row := table.Row{p.Name()}
		for _, k := range kinds {
			plugin, _ := p.Plugin(k)
			row = append(row, plugin)
		}
		t.AppendRow(append(row, len(p.Options())))
	}
	t.Render()
	fmt.Fprintf(w, "\n%d profiles, fingerprint %08x\n", reg.Len(), reg.Fingerprint())
}
