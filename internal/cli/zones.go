package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func zonesCmd(a *app) *cobra.Command {
	var showWards bool

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List the zone/ward directory",
		Long: `List the zones registrations and complaints are validated against.

Examples:
  wardctl zones
  wardctl zones --wards
  wardctl zones --zones-file ./zones.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := a.services(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ZONE\tNAME\tWARDS")
			for _, z := range env.Zones.Zones() {
				fmt.Fprintf(w, "%s\t%s\t%d\n", color.New(color.FgCyan).Sprint(z.ID), z.Name, len(z.Wards))
				if showWards {
					fmt.Fprintf(w, "\t\t%s\n", strings.Join(z.Wards, ", "))
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showWards, "wards", false, "list each zone's wards")
	return cmd
}
