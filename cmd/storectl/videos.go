package main

import (
	"context"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"videosplus/storefront/internal/app"
	"videosplus/storefront/internal/service"
)

func newVideosCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Inspect the catalog",
	}
	cmd.AddCommand(newVideosListCmd(opts))
	cmd.AddCommand(newVideosHealthCmd(opts))
	return cmd
}

func newVideosListCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				videos, err := a.Repos.Videos.List(ctx)
				if err != nil {
					return err
				}
				if format == "json" {
					return outputJSON(cmd, videos)
				}

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"ID", "Title", "Price", "Views", "Active", "Created"})
				for _, v := range videos {
					t.AppendRow(table.Row{v.ID, v.Title, v.Price, v.Views, v.IsActive, v.CreatedAt})
				}
				t.AppendFooter(table.Row{"", "Total", len(videos)})
				t.Render()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}

func newVideosHealthCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Report catalog entries missing required fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				report, err := service.NewCatalogService(a.Docs).VideoHealth(ctx)
				if err != nil {
					return err
				}
				if format == "json" {
					return outputJSON(cmd, report)
				}

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.SetTitle("%s: %d of %d videos valid, last backup %s",
					report.DataIntegrity, report.ValidVideos, report.TotalVideos, report.LastBackup)
				t.AppendHeader(table.Row{"Index", "ID", "Missing fields"})
				for _, inv := range report.InvalidVideos {
					t.AppendRow(table.Row{inv.Index, inv.ID, strings.Join(inv.MissingFields, ", ")})
				}
				t.Render()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	return cmd
}
