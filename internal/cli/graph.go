package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dominion/internal/ownership"
	"dominion/internal/pipeline"
)

func newGraphCommand(ro *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "graph <dump>",
		Short: "Draw which agents hold planets in which sectors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ro.load(cmd)
			if err != nil {
				return err
			}

			format := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
			switch format {
			case "png", "svg", "jpg", "dot":
			default:
				return fmt.Errorf("unsupported graph format %q", format)
			}

			p := pipeline.NewPipeline(pipeline.Options{DumpPath: args[0], Config: cfg})
			st, _, err := p.Ingest()
			if err != nil {
				return err
			}

			g, err := ownership.Build(st)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := ownership.Render(cmd.Context(), g, st, format, f); err != nil {
				f.Close()
				os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "ownership graph written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "ownership.svg", "output file (.svg, .png, .jpg, .dot)")
	return cmd
}
