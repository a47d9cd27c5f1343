package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dominion/internal/dump"
	"dominion/internal/log"
)

func newSliceCommand(ro *rootOptions) *cobra.Command {
	var table, output string

	cmd := &cobra.Command{
		Use:   "slice <dump>",
		Short: "Copy one table's sections out of a dump",
		Long: "Copy every section of one table, directive and sentinel included, " +
			"so a failing table can be reproduced without the rest of the dump.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.load(cmd)
			if err != nil {
				return err
			}

			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open dump: %w", err)
			}
			defer in.Close()

			var w io.Writer = cmd.OutOrStdout()
			var out *os.File
			if output != "" {
				out, err = os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer out.Close()
				w = out
			}

			res, err := dump.Slice(in, w, table, cfg.DumpConfig())
			if err != nil {
				return err
			}
			if out != nil {
				if err := out.Close(); err != nil {
					return err
				}
			}

			log.Info("slice written", "table", table, "sections", res.Sections, "rows", res.Rows)
			if res.Sections == 0 {
				log.Warn("table not found in dump", "table", table)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "table name to extract")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.MarkFlagRequired("table")
	return cmd
}
