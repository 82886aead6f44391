package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"videosplus/storefront/internal/app"
	"videosplus/storefront/internal/service"
)

func newBackupsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List or restore backup copies kept by the file backend",
	}
	cmd.AddCommand(newBackupsListCmd(opts))
	cmd.AddCommand(newBackupsRestoreCmd(opts))
	return cmd
}

func newBackupsListCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List retained backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				backups, err := service.NewCatalogService(a.Docs).Backups(ctx)
				if err != nil {
					return err
				}
				if format == "json" {
					return outputJSON(cmd, backups)
				}

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Name", "Size", "Created"})
				for _, b := range backups {
					t.AppendRow(table.Row{b.Name, b.Size, b.CreatedAt.Format("2006-01-02 15:04:05")})
				}
				t.Render()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}

func newBackupsRestoreCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore NAME",
		Short: "Replace the document with a backup copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := service.NewCatalogService(a.Docs).Restore(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "restored %s from %s\n", a.Docs.Key(), args[0])
				return nil
			})
		},
	}
	return cmd
}
