package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/pianopractice/practice-tracker/internal/auth"
	"github.com/pianopractice/practice-tracker/internal/practice"
)

func (c *cli) copyText(text string) error {
	if c.opts.Clipboard != nil {
		return c.opts.Clipboard(text)
	}
	return clipboard.WriteAll(text)
}

func (c *cli) newLoginCmd() *cobra.Command {
	var (
		cookie string
		noCopy bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in by pasting the session cookie from the browser",
		Long: `Sign-in happens in the browser. This command prints the server's login
URL (and copies it to the clipboard). After signing in, copy the value of
the session cookie from the browser and paste it here, or pass --cookie.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			out := cmd.OutOrStdout()

			loginURL := rt.Client.LoginURL()
			fmt.Fprintf(out, "Open %s in your browser to sign in.\n", loginURL)
			if !noCopy {
				if err := c.copyText(loginURL); err != nil {
					rt.Logger.Debug("clipboard write failed", "error", err)
				} else {
					fmt.Fprintln(out, "(copied to clipboard)")
				}
			}

			if strings.TrimSpace(cookie) == "" {
				fmt.Fprintf(out, "Paste the %s cookie value: ", rt.Config.CookieName)
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read cookie: %w", err)
				}
				cookie = line
			}
			cookie = strings.TrimSpace(cookie)
			if cookie == "" {
				return errors.New("no cookie provided")
			}

			rt.Client.SetSessionCookie(cookie)
			profile, verifyErr := rt.Client.FetchProfile(cmd.Context())
			if practice.IsUnauthorized(verifyErr) {
				return fmt.Errorf("the server rejected the cookie: %w", verifyErr)
			}
			if err := auth.Save(rt.Config.CredentialsPath, auth.Credentials{Cookie: cookie}); err != nil {
				return fmt.Errorf("save credentials: %w", err)
			}
			rt.Logger.Info("credentials saved", "path", rt.Config.CredentialsPath)
			if verifyErr != nil {
				fmt.Fprintf(out, "Cookie saved. Could not reach the server to verify it: %v\n", verifyErr)
				return nil
			}
			fmt.Fprintf(out, "Signed in as %s.\n", profile.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&cookie, "cookie", "", "session cookie value (skips the prompt)")
	cmd.Flags().BoolVar(&noCopy, "no-copy", false, "do not copy the login URL to the clipboard")
	return cmd
}

func (c *cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := auth.Clear(rt.Config.CredentialsPath); err != nil {
				return fmt.Errorf("clear credentials: %w", err)
			}
			rt.Coordinator.Logout()
			rt.Logger.Info("credentials cleared")
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"Signed out locally. To end the server session visit %s\n", rt.Client.LogoutURL())
			return err
		},
	}
}
