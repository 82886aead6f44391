package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"videosplus/storefront/internal/app"
	"videosplus/storefront/internal/codec"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored document as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				doc, err := a.Docs.Snapshot(ctx)
				if err != nil {
					return err
				}
				raw, err := codec.Encode(doc)
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
					return err
				}
				if err := os.WriteFile(output, raw, 0o600); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d videos, %d users, %d sessions to %s\n",
					len(doc.Videos), len(doc.Users), len(doc.Sessions), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write (default stdout)")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the stored document with the contents of FILE",
		Long:  "import replaces the whole stored document. Use it with --backend to move data between backends.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			// A malformed file would read back as the default document.
			doc, warnings, err := codec.DecodeWithWarnings(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", w.Field, w.Message)
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := a.Docs.Replace(ctx, doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d videos, %d users, %d sessions into %s\n",
					len(doc.Videos), len(doc.Users), len(doc.Sessions), a.Docs.Key())
				return nil
			})
		},
	}
	return cmd
}
