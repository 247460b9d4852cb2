package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pianopractice/practice-tracker/internal/app"
	"github.com/pianopractice/practice-tracker/internal/fakeapi"
	"github.com/pianopractice/practice-tracker/internal/logging"
	"github.com/pianopractice/practice-tracker/internal/practice"
)

func (c *cli) newDemoCmd() *cobra.Command {
	var (
		addr  string
		empty bool
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the interactive client against a built-in in-memory server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config(cmd)
			if err != nil {
				return err
			}
			logger, closer, err := logging.Open(cfg.LogPath, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("open log: %w", err)
			}
			defer closer.Close()

			srv := fakeapi.New(fakeapi.Options{
				CookieName:  cfg.CookieName,
				DisplayName: "Demo Pianist",
				Logger:      logger.With("component", "fakeapi"),
			})
			if !empty {
				if err := seedDemo(srv, time.Now()); err != nil {
					return err
				}
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			cfg.BaseURL = "http://" + ln.Addr().String()
			logger.Info("demo server listening", "addr", cfg.BaseURL)

			rt, err := app.NewRuntime(cfg, logger, srv.Cookie())
			if err != nil {
				_ = ln.Close()
				return err
			}

			httpSrv := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 5 * time.Second}
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("demo server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = httpSrv.Shutdown(shutdownCtx)
				}()
				return c.opts.RunTUI(ctx, rt, app.Options{Clipboard: c.opts.Clipboard})
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:0", "listen address for the demo server")
	cmd.Flags().BoolVar(&empty, "empty", false, "start with an empty library")
	return cmd
}

// seedDemo fills the demo library with a few pieces and two weeks of sessions.
func seedDemo(srv *fakeapi.Server, now time.Time) error {
	pieces := []struct{ title, composer string }{
		{"Prelude in C major, BWV 846", "J. S. Bach"},
		{"Clair de Lune", "Debussy"},
		{"Gymnopédie No. 1", "Satie"},
	}
	ids := make([]int64, 0, len(pieces))
	for _, p := range pieces {
		ids = append(ids, srv.SeedPiece(p.title, p.composer).ID)
	}
	focus := []string{"left hand", "pedaling", "dynamics", "memorization", ""}
	for day := 13; day >= 0; day-- {
		if day%4 == 3 {
			continue
		}
		date := now.AddDate(0, 0, -day).Format(practice.DateLayout)
		in := practice.NewSessionInput(ids[day%len(ids)], date, 15+(day*7)%40, focus[day%len(focus)], "")
		if _, err := srv.SeedSession(in); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}
	return nil
}
