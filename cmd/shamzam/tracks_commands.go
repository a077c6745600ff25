package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/cesargomez89/shamzam/internal/catalogclient"
	"github.com/cesargomez89/shamzam/internal/domain"
	"github.com/cesargomez89/shamzam/internal/httpclient"
)

func newTracksCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Inspect and edit the catalog",
	}
	cmd.AddCommand(newTracksListCommand(ctx))
	cmd.AddCommand(newTracksRemoveCommand(ctx))
	return cmd
}

func (c *commandContext) catalogClient() (*catalogclient.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return catalogclient.New(cfg.CatalogURL, cfg.CatalogTimeout, httpclient.NewClient(nil, 0)), nil
}

func newTracksListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged tracks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.catalogClient()
			if err != nil {
				return err
			}
			tracks, err := client.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list tracks: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(tracks)
			}
			if len(tracks) == 0 {
				fmt.Fprintln(out, "Catalog is empty")
				return nil
			}
			fmt.Fprintln(out, renderTracks(tracks))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newTracksRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <artist> <title>",
		Short: "Remove one track from the catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.catalogClient()
			if err != nil {
				return err
			}
			msg, err := client.Remove(cmd.Context(), args[0], args[1])
			if err != nil {
				if domain.KindOf(err) == domain.KindNotFound {
					return fmt.Errorf("track %q by %q not found", args[1], args[0])
				}
				return fmt.Errorf("remove track: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func renderTracks(tracks []*domain.Track) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Artist", "Title"})
	for _, t := range tracks {
		tw.AppendRow(table.Row{strconv.FormatInt(t.ID, 10), t.Artist, t.Title})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
