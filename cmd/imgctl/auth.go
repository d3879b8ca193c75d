package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/backend"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/configuration"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/command"
	"github.com/File-Sharing-BondBridg/Image-Service/internal/services/query"
)

var stdin io.Reader = os.Stdin

// passwordOrStdin returns value, or reads one line from stdin when value is
// empty or "-".
func passwordOrStdin(value, prompt string) (string, error) {
	if value != "" && value != "-" {
		return value, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("empty password")
	}
	return line, nil
}

func newSignupCmd(cfg *configuration.ClientConfig) *cobra.Command {
	var (
		email     string
		password  string
		showEmail bool
	)

	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrStdin(password, "password: ")
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), cfg, func(client *backend.Client) error {
				user, err := command.CreateUser(cmd.Context(), client, models.NewUser{
					Username:        args[0],
					Email:           email,
					EmailVisibility: showEmail,
					Password:        pw,
					PasswordConfirm: pw,
				})
				if err != nil {
					return err
				}
				success("created %s (%s plan)", user.Username, user.AccountType)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password, read from stdin when omitted")
	cmd.Flags().BoolVar(&showEmail, "email-visible", false, "make the email visible to other users")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLoginCmd(cfg *configuration.ClientConfig) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email-or-username>",
		Short: "Log in and keep the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrStdin(password, "password: ")
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), cfg, func(client *backend.Client) error {
				user, err := command.LoginUser(cmd.Context(), client, args[0], pw)
				if err != nil {
					return err
				}
				success("logged in as %s", user.Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password, read from stdin when omitted")
	return cmd
}

func newLogoutCmd(cfg *configuration.ClientConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), cfg, func(client *backend.Client) error {
				if err := command.LogoutUser(cmd.Context(), client); err != nil {
					return err
				}
				success("logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(cfg *configuration.ClientConfig, output *string) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), cfg, func(client *backend.Client) error {
				if !query.IsUserLoggedIn(client) {
					return errNotLoggedIn
				}
				record := client.AuthStore().Record()
				if done, err := writeStructured(*output, record); done {
					return err
				}
				_, err := fmt.Fprintf(stdout, "%s <%v>\n", client.AuthStore().Username(), record["email"])
				return err
			})
		},
	}
}

func newPasswdCmd(cfg *configuration.ClientConfig) *cobra.Command {
	var oldPassword, password, confirm string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUser(cmd.Context(), cfg, func(client *backend.Client, _ string) error {
				userID, _ := client.AuthStore().Record()["id"].(string)
				if _, err := command.ChangeUserPassword(cmd.Context(), client, userID, oldPassword, password, confirm); err != nil {
					return err
				}
				// The store revokes existing tokens on a password change.
				if err := command.LogoutUser(cmd.Context(), client); err != nil {
					return err
				}
				success("password changed, log in again")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&oldPassword, "old-password", "", "current password")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	cmd.Flags().StringVar(&confirm, "password-confirm", "", "new password again")
	for _, name := range []string{"old-password", "password", "password-confirm"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
