package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MiniShop/internal/catalog"
	"MiniShop/pkg/kit"
)

var validOutputs = []string{"json", "yaml"}

type rootOptions struct {
	CatalogPath string
	ArchivePath string
	Output      string
	LogLevel    string

	log     *zap.Logger
	manager *catalog.Manager
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Inspect and edit the MiniShop product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(validOutputs, opts.Output) {
				return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, validOutputs)
			}

			log, err := kit.NewLogger("catalogctl", opts.LogLevel)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			opts.log = log

			opts.manager = catalog.NewManager(catalog.NewFileStore(opts.CatalogPath, opts.ArchivePath, log), log)
			return opts.manager.Init(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.CatalogPath, "catalog", "data/products.json", "catalog file")
	cmd.PersistentFlags().StringVar(&opts.ArchivePath, "archive", "data/removed_products.json", "archive of removed products")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "json", "output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level")

	cmd.AddCommand(
		newListCommand(opts),
		newGetCommand(opts),
		newAddCommand(opts),
		newUpdateCommand(opts),
		newDeleteCommand(opts),
		newRemovedCommand(opts),
		newServeCommand(opts),
	)
	return cmd
}
