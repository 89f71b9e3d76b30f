package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"coursevault-backend/models"
	"coursevault-backend/services"
)

func newTitlesCommand(ctx *commandContext) *cobra.Command {
	titlesCmd := &cobra.Command{
		Use:   "titles",
		Short: "Inspect and manage the title cache",
		Long: `Inspect and manage the title cache.

The title cache maps Wistia media ids to human-readable titles. It is stored
as CSV shards named titles_XX.csv, where XX is the first two characters of
the media id.

Commands:
  list     - List every cached title
  get      - Show the title of one media id, resolving it if needed
  fetch    - Resolve titles for one or more video URLs
  refresh  - Re-resolve every cached title`,
	}

	titlesCmd.AddCommand(newTitlesListCommand(ctx))
	titlesCmd.AddCommand(newTitlesGetCommand(ctx))
	titlesCmd.AddCommand(newTitlesFetchCommand(ctx))
	titlesCmd.AddCommand(newTitlesRefreshCommand(ctx))

	return titlesCmd
}

func newTitlesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every cached title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.buildApp(false)
			if err != nil {
				return err
			}

			snapshot := a.cache.Snapshot()
			if jsonOut {
				return writeJSON(cmd, snapshot)
			}

			out := cmd.OutOrStdout()
			if len(snapshot) == 0 {
				fmt.Fprintln(out, "Title cache: empty")
				return nil
			}

			rows := make([][]string, 0, len(snapshot))
			for _, id := range a.cache.IDs() {
				rows = append(rows, []string{services.ShardKey(id), id, snapshot[id]})
			}
			fmt.Fprintf(out, "Title cache: %d titles\n", len(rows))
			fmt.Fprintln(out, renderTable([]string{"Shard", "Media ID", "Title"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newTitlesGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <media-id>",
		Short: "Show the title of a media id, resolving and caching it on a miss",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.buildApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			title, cached, err := a.titles.GetTitle(cmd.Context(), args[0])
			source := "resolved"
			if cached {
				source = "cached"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s (%s)\n", args[0], title, source)
			return err
		},
	}
}

func newTitlesFetchCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "fetch <url>...",
		Short: "Resolve titles for video URLs and cache them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.buildApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			results, fetched, err := a.titles.FetchTitles(cmd.Context(), args)
			if jsonOut {
				if jerr := writeJSON(cmd, models.FetchTitlesResponse{Titles: results}); jerr != nil {
					return jerr
				}
				return err
			}

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				mediaID := "-"
				if r.MediaID != nil {
					mediaID = *r.MediaID
				}
				rows = append(rows, []string{mediaID, r.Title, strconv.FormatBool(r.Cached), r.URL})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Media ID", "Title", "Cached", "URL"}, rows, nil))
			fmt.Fprintf(out, "%d resolved remotely\n", fetched)
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newTitlesRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-resolve every cached title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.buildApp(true)
			if err != nil {
				return err
			}
			defer a.close()

			oldCount, newCount, err := a.titles.RefreshAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache refreshed. Updated %d titles (was %d).\n", newCount, oldCount)
			return nil
		},
	}
}
