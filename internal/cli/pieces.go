package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pianopractice/practice-tracker/internal/practice"
)

func (c *cli) newPiecesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pieces",
		Aliases: []string{"piece"},
		Short:   "List, add and delete pieces",
	}
	cmd.AddCommand(c.newPiecesListCmd(), c.newPiecesAddCmd(), c.newPiecesRmCmd())
	return cmd
}

func (c *cli) newPiecesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pieces, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			pieces, err := rt.Client.FetchPieces(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch pieces: %w", err)
			}
			return c.render(cmd.OutOrStdout(), pieces, func(w io.Writer) error {
				if len(pieces) == 0 {
					_, err := fmt.Fprintln(w, "No pieces yet. Add one with: practice-tracker pieces add <title>")
					return err
				}
				for _, p := range pieces {
					if _, err := fmt.Fprintf(w, "%4d  %s\n", p.ID, p.Label()); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func (c *cli) newPiecesAddCmd() *cobra.Command {
	var composer string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a piece to the library",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			piece, err := rt.Coordinator.AddPiece(cmd.Context(), strings.Join(args, " "), composer)
			if err != nil {
				return fmt.Errorf("add piece: %w", err)
			}
			return c.render(cmd.OutOrStdout(), piece, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Piece added: #%d %s\n", piece.ID, piece.Label())
				return err
			})
		},
	}
	cmd.Flags().StringVar(&composer, "composer", "", "composer (optional)")
	return cmd
}

func (c *cli) newPiecesRmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a piece permanently",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid piece id %q", args[0])
			}
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			label := fmt.Sprintf("#%d", id)
			if pieces, err := rt.Client.FetchPieces(cmd.Context()); err == nil {
				if p, ok := findPiece(pieces, id); ok {
					label = fmt.Sprintf("#%d %s", id, p.Label())
				}
			}
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete piece %s? [y/N] ", label))
				if err != nil {
					return err
				}
				if !ok {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return err
				}
			}
			if err := rt.Coordinator.DeletePiece(cmd.Context(), id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted piece %s\n", label)
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func findPiece(pieces []practice.Piece, id int64) (practice.Piece, bool) {
	for _, p := range pieces {
		if p.ID == id {
			return p, true
		}
	}
	return practice.Piece{}, false
}

// confirm asks a yes/no question; only "y" or "yes" confirms.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			return false, nil
		}
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
