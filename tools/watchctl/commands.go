package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cinetrack/internal/auth"
	"cinetrack/models"
	"cinetrack/services/watchlist"
)

const stampLayout = "2006-01-02 15:04"

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied (%s)\n", db.Driver())
			return nil
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var userID, kind string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show a user's watchlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter models.WatchlistFilter
			if strings.TrimSpace(kind) != "" {
				parsed, err := models.ParseMediaKind(kind)
				if err != nil {
					return err
				}
				filter.Kind = parsed
			}

			db, err := ctx.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := watchlist.NewService(db).List(cmd.Context(), userID, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Watchlist: empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(e.ID, 10),
					strconv.FormatInt(e.TMDBID, 10),
					string(e.MediaType),
					e.Title,
					yesNo(e.Watched),
					e.Liked.String(),
					stamp(e.WatchedAt),
					e.CreatedAt.Local().Format(stampLayout),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "TMDB", "Kind", "Title", "Watched", "Liked", "Watched at", "Added"},
				rows, 1, 2,
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id")
	cmd.Flags().StringVar(&kind, "kind", "", "Only movie or series entries")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	var (
		userID string
		showID int64
	)
	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "Show season and episode progress for one show",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			svc := watchlist.NewService(db)
			seasons, err := svc.ListSeasons(cmd.Context(), userID, showID)
			if err != nil {
				return err
			}
			episodes, err := svc.ListEpisodes(cmd.Context(), userID, showID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(seasons) == 0 && len(episodes) == 0 {
				fmt.Fprintf(out, "No progress recorded for show %d\n", showID)
				return nil
			}
			if len(seasons) > 0 {
				rows := make([][]string, 0, len(seasons))
				for _, s := range seasons {
					rows = append(rows, []string{strconv.Itoa(s.SeasonNumber), yesNo(s.Watched), stamp(s.WatchedAt)})
				}
				fmt.Fprintln(out, renderTable([]string{"Season", "Watched", "Watched at"}, rows, 1))
			}
			if len(episodes) > 0 {
				rows := make([][]string, 0, len(episodes))
				for _, e := range episodes {
					rows = append(rows, []string{
						fmt.Sprintf("S%02dE%02d", e.SeasonNumber, e.EpisodeNumber),
						yesNo(e.Watched),
						stamp(e.WatchedAt),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Episode", "Watched", "Watched at"}, rows))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id")
	cmd.Flags().Int64Var(&showID, "show", 0, "Catalog id of the show")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("show")
	return cmd
}

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			if strings.TrimSpace(settings.Auth.JWTSecret) == "" {
				return errors.New("no jwt secret configured")
			}
			token, err := auth.Issue(settings.Auth.JWTSecret, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id carried by the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime; 0 for no expiry")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func stamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(stampLayout)
}
