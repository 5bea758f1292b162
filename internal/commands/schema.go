package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rojournal-dev/rojournal/internal/logger"
	"github.com/rojournal-dev/rojournal/internal/schema"
)

func newSchemaCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the report column table and its tag bindings",
		Long: `Builds the column table the report classifies amounts with and
prints every column with its kind and tag bindings. Tag collisions are
listed at the bottom; with --strict a collision fails the command, the
same way it would fail a report run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := schema.NewDefault(strict, logger.WithComponent("schema"))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tKIND\tTAGS")
			for _, col := range reg.Columns() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", col.Key, col.Kind, strings.Join(col.Tags, "; "))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\ntotal_base = %s\n", strings.Join(reg.BaseGroup(), " + "))
			fmt.Fprintf(out, "total_vat  = %s\n", strings.Join(reg.VATGroup(), " + "))

			if collisions := reg.Collisions(); len(collisions) > 0 {
				fmt.Fprintln(out, "\nCollisions:")
				for _, c := range collisions {
					fmt.Fprintf(out, "  %s\n", c)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail if the table binds a tag to more than one column")

	return cmd
}
