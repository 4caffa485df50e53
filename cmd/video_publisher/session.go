package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/video-publisher/internal/locator"
	"github.com/jonathan/video-publisher/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Check whether a stored session is still usable",
	Long: `Loads the stored session for a platform account and probes it against the
live site without attempting a login. Exits non-zero when the session is
missing or stale.`,
	RunE: runSession,
}

var (
	sessionFlags    commonFlags
	sessionPlatform string
	sessionAccount  string
)

func init() {
	sessionFlags.register(sessionCmd)
	sessionCmd.Flags().StringVarP(&sessionPlatform, "platform", "p", "", fmt.Sprintf("Platform name (%s)", strings.Join(locator.Platforms(), ", ")))
	sessionCmd.Flags().StringVarP(&sessionAccount, "account", "a", "", "Account label the session is stored under")
	_ = sessionCmd.MarkFlagRequired("platform")
	_ = sessionCmd.MarkFlagRequired("account")

	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := sessionFlags.resolve(cmd)
	if err != nil {
		return err
	}

	profile, err := locator.LookupProfile(strings.ToLower(sessionPlatform))
	if err != nil {
		return err
	}

	st, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// Probe only: never fall through to an interactive login here.
	if _, err := st.manager.EnsureSession(ctx, profile, sessionAccount, false); err != nil {
		var unavailable *session.UnavailableError
		if errors.As(err, &unavailable) {
			return fmt.Errorf("session for %s/%s is not usable: %s (run the login command to refresh it)", profile.Platform, sessionAccount, unavailable.Reason)
		}
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Session for %s/%s is valid\n", profile.Platform, sessionAccount)
	return nil
}
