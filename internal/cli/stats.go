package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

func (c *cli) newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			profile, err := rt.Client.FetchProfile(cmd.Context())
			if err != nil {
				if practice.IsUnauthorized(err) {
					return fmt.Errorf("not signed in (run practice-tracker login): %w", err)
				}
				return fmt.Errorf("fetch profile: %w", err)
			}
			return c.render(cmd.OutOrStdout(), profile, func(w io.Writer) error {
				rows := [][2]string{
					{"Email", profile.Email},
					{"Joined", orDash(derefString(profile.JoinedOn))},
					{"Pieces", fmt.Sprint(profile.TotalPieces)},
					{"Sessions", fmt.Sprint(profile.TotalSessions)},
					{"Minutes", fmt.Sprint(profile.TotalMinutes)},
					{"Last practice", orDash(derefString(profile.LastPracticeDate))},
					{"Current streak", fmt.Sprintf("%d days", profile.CurrentStreakDays)},
					{"Longest streak", fmt.Sprintf("%d days", profile.LongestStreakDays)},
				}
				if _, err := fmt.Fprintln(w, profile.Greeting()); err != nil {
					return err
				}
				return writeRows(w, rows)
			})
		},
	}
}

type statsOutput struct {
	practice.Stats
	ByDay []practice.DayMinutes `json:"by_day"`
}

func (c *cli) newStatsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the last 7 days and minutes per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			stats, err := rt.Client.FetchStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch stats: %w", err)
			}
			byDay, err := rt.Client.FetchMinutesByDay(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("fetch minutes by day: %w", err)
			}
			out := statsOutput{Stats: *stats, ByDay: byDay}
			return c.render(cmd.OutOrStdout(), out, func(w io.Writer) error {
				rows := [][2]string{
					{"Total (7 days)", fmt.Sprintf("%d min", stats.TotalMinutesLast7Days)},
					{"Top piece", stats.TopPiece()},
					{"Streak", fmt.Sprintf("%d days", stats.CurrentStreakDays)},
				}
				if err := writeRows(w, rows); err != nil {
					return err
				}
				return writeDayBars(w, byDay)
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 14, "days of per-day minutes to show")
	return cmd
}

func writeRows(w io.Writer, rows [][2]string) error {
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "  %-*s  %s\n", width, r[0], r[1]); err != nil {
			return err
		}
	}
	return nil
}

const barWidth = 30

func writeDayBars(w io.Writer, days []practice.DayMinutes) error {
	if len(days) == 0 {
		return nil
	}
	peak := 0
	for _, d := range days {
		peak = max(peak, d.Minutes)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, d := range days {
		n := 0
		if peak > 0 {
			n = d.Minutes * barWidth / peak
		}
		if d.Minutes > 0 && n == 0 {
			n = 1
		}
		if _, err := fmt.Fprintf(w, "  %s  %-*s %d\n", d.Date, barWidth, strings.Repeat("█", n), d.Minutes); err != nil {
			return err
		}
	}
	return nil
}
