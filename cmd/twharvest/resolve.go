package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"twharvest/pkg/handle"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [accounts...]",
	Short: "Print the handle each account reference resolves to",
	Example: `  twharvest resolve 12345 @nasa https://twitter.com/esa/
  twharvest resolve --input accounts.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		refs, handles, err := resolveAll(args)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			return fmt.Errorf("no accounts given; pass them as arguments or with --input")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for i, ref := range refs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ref, referenceKind(ref), handles[i])
		}
		return w.Flush()
	},
}

// referenceKind names how a reference is resolved
func referenceKind(ref handle.Reference) string {
	if ref.IsID() {
		return "id"
	}
	return "text"
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVarP(&inputFile, "input", "i", "", "YAML/JSON file listing accounts")
}
