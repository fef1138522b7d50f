package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kindling-io/kindling/internal/auth"
	"github.com/kindling-io/kindling/internal/config"
	"github.com/kindling-io/kindling/internal/models"
)

var (
	flagLoginEmail string
	flagLoginName  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in on this machine",
	Long: `Sign in on this machine. The session is written to ~/.kindling/session.yaml;
a running workspace picks it up immediately.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out on this machine",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&flagLoginEmail, "email", "", "Email address to sign in as (required)")
	loginCmd.Flags().StringVar(&flagLoginName, "name", "", "Display name (defaults to the part of the email before @)")
	_ = loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("failed to create global directory: %w", err)
	}
	id, err := auth.Login(flagLoginEmail, flagLoginName)
	if err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Signed in as "+id.DisplayName+" <"+id.Email+">"))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := auth.Logout(); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	user, err := currentUser()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if user == nil {
		fmt.Fprintln(out, "Not signed in. Run "+styleCommand.Render("kindling login --email <you>")+" first.")
		return nil
	}
	fmt.Fprintf(out, "  %s  %s\n", styleLabel.Render("Name "), styleValue.Render(user.DisplayName))
	fmt.Fprintf(out, "  %s  %s\n", styleLabel.Render("Email"), styleValue.Render(user.Email))
	fmt.Fprintf(out, "  %s  %s\n", styleLabel.Render("UID  "), styleValue.Render(user.UID))
	return nil
}

// currentUser reads the session file. It returns nil when nobody is signed in.
func currentUser() (*models.Identity, error) {
	session, err := config.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	return session.User, nil
}

// requireUser is currentUser for commands that act on the user's projects.
func requireUser() (*models.Identity, error) {
	user, err := currentUser()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("not signed in; run 'kindling login --email <you>' first")
	}
	return user, nil
}
