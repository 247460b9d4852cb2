// Package cli defines the practice-tracker command tree. The root command
// runs the interactive client; subcommands expose the same operations for
// scripts.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pianopractice/practice-tracker/internal/app"
	"github.com/pianopractice/practice-tracker/internal/config"
)

// Options inject the process edges. Zero values use the real terminal,
// clipboard and TUI.
type Options struct {
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
	Clipboard func(string) error
	RunTUI    func(ctx context.Context, rt *app.Runtime, opts app.Options) error
}

type cli struct {
	opts       Options
	configPath string
	output     string
}

// Execute builds the command tree and runs it with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd(Options{}).ExecuteContext(ctx)
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.RunTUI == nil {
		opts.RunTUI = app.Run
	}
	c := &cli{opts: opts}

	root := &cobra.Command{
		Use:   "practice-tracker",
		Short: "Track piano practice from the terminal",
		Long: `practice-tracker keeps a library of pieces and a log of practice
sessions on a Piano Practice Tracker server.

Run without a subcommand to open the interactive client. Sign in once with
"practice-tracker login"; the session cookie is stored locally.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			return c.opts.RunTUI(cmd.Context(), rt, app.Options{Clipboard: c.opts.Clipboard})
		},
	}
	if opts.In != nil {
		root.SetIn(opts.In)
	}
	if opts.Out != nil {
		root.SetOut(opts.Out)
	}
	if opts.Err != nil {
		root.SetErr(opts.Err)
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	flags.String("base-url", "", "server base URL (default http://127.0.0.1:8000)")
	flags.Int("poll", 0, "refresh interval in seconds for the interactive client (0 disables)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.StringVarP(&c.output, "output", "o", formatText, "output format: text, json, yaml")

	root.AddCommand(
		c.newMeCmd(),
		c.newPiecesCmd(),
		c.newSessionCmd(),
		c.newSessionsCmd(),
		c.newStatsCmd(),
		c.newLoginCmd(),
		c.newLogoutCmd(),
		c.newLogsCmd(),
		c.newDemoCmd(),
	)
	return root
}

func (c *cli) config(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Path: c.configPath, Flags: cmd.Flags()})
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (c *cli) runtime(cmd *cobra.Command) (*app.Runtime, error) {
	cfg, err := c.config(cmd)
	if err != nil {
		return nil, err
	}
	return app.Open(cfg)
}
