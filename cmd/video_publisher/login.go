package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/video-publisher/internal/locator"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Capture a platform login session interactively",
	Long: `Opens a headed browser on the platform's login page, waits for you to
complete the login, and stores the captured session for later runs.`,
	RunE: runLogin,
}

var (
	loginFlags    commonFlags
	loginPlatform string
	loginAccount  string
)

func init() {
	loginFlags.register(loginCmd)
	loginCmd.Flags().StringVarP(&loginPlatform, "platform", "p", "", fmt.Sprintf("Platform name (%s)", strings.Join(locator.Platforms(), ", ")))
	loginCmd.Flags().StringVarP(&loginAccount, "account", "a", "", "Account label the session is stored under")
	_ = loginCmd.MarkFlagRequired("platform")
	_ = loginCmd.MarkFlagRequired("account")

	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loginFlags.resolve(cmd)
	if err != nil {
		return err
	}
	// A login capture is interactive by definition.
	cfg.InteractiveLogin = true

	profile, err := locator.LookupProfile(strings.ToLower(loginPlatform))
	if err != nil {
		return err
	}

	st, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	if _, err := st.manager.EnsureSession(ctx, profile, loginAccount, true); err != nil {
		return fmt.Errorf("login capture failed: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Session for %s/%s stored\n", profile.Platform, loginAccount)
	return nil
}
