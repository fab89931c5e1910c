package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"netbox-reconciler/core/reconcile"
	"netbox-reconciler/feature/inventory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var kindsOutput string

// kindsCmd lists the supported resource kinds.
var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the resource kinds that can be reconciled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := inventory.NewRegistry()
		if err != nil {
			return err
		}
		engine := reconcile.NewEngine(nil, registry, zap.NewNop())
		kinds := inventory.NewService(engine, nil, nil, nil).Kinds()

		out := cmd.OutOrStdout()
		if kindsOutput == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(kinds)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tENDPOINT\tKEY\tFIELDS")
		for _, k := range kinds {
			fields := make([]string, 0, len(k.Fields))
			for name, t := range k.Fields {
				if target, ok := k.References[name]; ok {
					t = "->" + target
				}
				fields = append(fields, name+":"+t)
			}
			sort.Strings(fields)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", k.Name, k.Endpoint, k.NaturalKey, strings.Join(fields, " "))
		}
		return w.Flush()
	},
}

func init() {
	kindsCmd.Flags().StringVarP(&kindsOutput, "output", "o", "text", "Output format: text or json")
	RootCmd.AddCommand(kindsCmd)
}
