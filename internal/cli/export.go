package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/beanapologist/ProductiveMining-sub001/internal/db"
	"github.com/beanapologist/ProductiveMining-sub001/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Format string
	Output string
	Limit  int
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <blocks|discoveries>",
		Short: "Export chain history to CSV or JSON",
		Long: `Read the local database and write chain history to a file or stdout.

Example:
  miningd export blocks --format csv -o blocks.csv
  miningd export discoveries --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "csv", "output format (csv|json)")
	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 1000, "maximum records to export")

	return cmd
}

func runExport(opts *ExportOptions, subject string) error {
	format, err := export.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	cfg, log, err := setup(opts.RootOptions)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := db.Open(cfg.DBPath()); err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer db.Close()

	var w io.Writer = os.Stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch subject {
	case "blocks":
		blocks, err := db.ListBlocks(opts.Limit)
		if err != nil {
			return err
		}
		return export.Blocks(w, format, blocks)
	case "discoveries":
		discoveries, err := db.ListDiscoveries(opts.Limit)
		if err != nil {
			return err
		}
		return export.Discoveries(w, format, discoveries)
	default:
		return fmt.Errorf("unknown export subject %q (want blocks or discoveries)", subject)
	}
}
