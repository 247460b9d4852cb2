package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

const defaultSessionMinutes = 30

func (c *cli) newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Record practice sessions",
	}
	cmd.AddCommand(c.newSessionLogCmd())
	return cmd
}

func (c *cli) newSessionLogCmd() *cobra.Command {
	var (
		pieceID int64
		date    string
		minutes int
		focus   string
		notes   string
	)
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a practice session for a piece",
		Example: `  practice-tracker session log --piece 3 --minutes 45 --focus "left hand"
  practice-tracker session log --piece 3 --date 2025-03-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = practice.Today()
			}
			in := practice.NewSessionInput(pieceID, date, minutes, focus, notes)
			if err := in.Validate(); err != nil {
				return err
			}
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			session, err := rt.Coordinator.LogSession(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("log session: %w", err)
			}
			return c.render(cmd.OutOrStdout(), session, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged %s for piece #%d on %s\n",
					minutesLabel(session.Minutes), session.PieceID, session.PracticeDate)
				return err
			})
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&pieceID, "piece", 0, "piece id (required)")
	flags.StringVar(&date, "date", "", "practice date YYYY-MM-DD (default today)")
	flags.IntVar(&minutes, "minutes", defaultSessionMinutes, "minutes practiced (1-600)")
	flags.StringVar(&focus, "focus", "", "what you worked on")
	flags.StringVar(&notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("piece")
	return cmd
}

func (c *cli) newSessionsCmd() *cobra.Command {
	var (
		query practice.SessionQuery
		limit int
	)
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List logged sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			var (
				sessions []practice.Session
				pieces   []practice.Piece
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				sessions, err = rt.Client.FetchSessions(ctx, query)
				return err
			})
			g.Go(func() error {
				var err error
				pieces, err = rt.Client.FetchPieces(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return fmt.Errorf("fetch sessions: %w", err)
			}
			if limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}

			return c.render(cmd.OutOrStdout(), sessions, func(w io.Writer) error {
				if len(sessions) == 0 {
					_, err := fmt.Fprintln(w, "No sessions logged.")
					return err
				}
				titles := make(map[int64]string, len(pieces))
				for _, p := range pieces {
					titles[p.ID] = p.Title
				}
				for _, s := range sessions {
					title, ok := titles[s.PieceID]
					if !ok {
						title = fmt.Sprintf("piece #%d", s.PieceID)
					}
					line := fmt.Sprintf("%s  %6s  %s", s.PracticeDate, minutesLabel(s.Minutes), title)
					if focus := derefString(s.Focus); focus != "" {
						line += "  (" + focus + ")"
					}
					if _, err := fmt.Fprintln(w, line); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&query.PieceID, "piece", 0, "only sessions for this piece id")
	flags.StringVar(&query.DateFrom, "from", "", "inclusive start date YYYY-MM-DD")
	flags.StringVar(&query.DateTo, "to", "", "inclusive end date YYYY-MM-DD")
	flags.IntVarP(&limit, "limit", "n", 20, "maximum sessions to show (0 for all)")
	return cmd
}

func minutesLabel(m int) string {
	return fmt.Sprintf("%d min", m)
}
