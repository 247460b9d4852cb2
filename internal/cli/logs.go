package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pianopractice/practice-tracker/internal/logging"
	"github.com/pianopractice/practice-tracker/internal/logtail"
)

func (c *cli) newLogsCmd() *cobra.Command {
	var (
		tail  int
		level string
		color bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the client log file",
		Example: `  # Last 50 lines
  practice-tracker logs

  # Everything at warn or above
  practice-tracker logs -n 0 --level warn`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config(cmd)
			if err != nil {
				return err
			}
			lines, err := logtail.Read(cfg.LogPath, tail)
			if err != nil {
				return fmt.Errorf("read log: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(lines) == 0 {
				_, err := fmt.Fprintf(out, "No log entries in %s\n", cfg.LogPath)
				return err
			}
			minLevel := logging.ParseLevel(level)
			if !color {
				for _, line := range logtail.Format(lines, minLevel) {
					fmt.Fprintln(out, line)
				}
				return nil
			}
			for _, line := range lines {
				entry, ok := logtail.Parse(line)
				if ok && entry.Level < minLevel {
					continue
				}
				fmt.Fprintln(out, entry.Colorize())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&tail, "tail", "n", 50, "number of lines to show (0 for all)")
	cmd.Flags().StringVar(&level, "level", logging.LevelDebug, "minimum level: debug, info, warn, error")
	cmd.Flags().BoolVar(&color, "color", false, "colorize output")
	return cmd
}
