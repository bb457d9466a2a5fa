package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"MiniShop/internal/catalog"
	"MiniShop/pkg/kit"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every product in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := opts.manager.List(cmd.Context())
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), opts.Output, products)
		},
	}
}

func newGetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := catalog.ParseID(args[0])
			if err != nil {
				return err
			}
			p, err := opts.manager.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), opts.Output, p)
		},
	}
}

func newAddCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add -f product.json",
		Short: "Append a product read from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var p catalog.Product
			if err := readJSON(cmd.InOrStdin(), file, &p); err != nil {
				return err
			}
			out, err := opts.manager.Add(cmd.Context(), p)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), opts.Output, out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `product JSON file, "-" for stdin`)
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newUpdateCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id> -f patch.json",
		Short: "Overlay the fields of a JSON patch on a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := catalog.ParseID(args[0])
			if err != nil {
				return err
			}
			var patch catalog.Patch
			if err := readJSON(cmd.InOrStdin(), file, &patch); err != nil {
				return err
			}
			out, err := opts.manager.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), opts.Output, out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", `patch JSON file, "-" for stdin`)
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a product and move it to the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := catalog.ParseID(args[0])
			if err != nil {
				return err
			}
			out, err := opts.manager.Delete(cmd.Context(), id)
			if errors.Is(err, catalog.ErrArchive) {
				// still show what was removed; the exit status reports the archive
				if perr := printValue(cmd.OutOrStdout(), opts.Output, out); perr != nil {
					return perr
				}
				return err
			}
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), opts.Output, out)
		},
	}
}

func newRemovedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "removed",
		Short: "Print the archive of removed products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			removed, err := opts.manager.Removed(cmd.Context())
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), opts.Output, removed)
		},
	}
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var (
		addr         string
		token        string
		metricsToken string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog JSON API without the storefront",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := &catalog.Server{Manager: opts.manager, Log: opts.log}
			if token != "" {
				s.Guard = kit.MetricsAuth(token)
			}

			h := catalog.NewHandler(s, catalog.HTTPDeps{
				Log:            opts.log,
				Service:        "catalogctl",
				Registry:       prometheus.NewRegistry(),
				MetricsEnabled: metricsToken != "",
				MetricsToken:   metricsToken,
			})
			return kit.RunHTTPServer(cmd.Context(), addr, h, opts.log, kit.ServerOptions{})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8082", "listen address")
	cmd.Flags().StringVar(&token, "token", "", "bearer token required for writes")
	cmd.Flags().StringVar(&metricsToken, "metrics-token", "", "bearer token for /metrics; empty disables it")
	return cmd
}

func readJSON(stdin io.Reader, file string, dst any) error {
	r := stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", file, err)
	}
	return nil
}
