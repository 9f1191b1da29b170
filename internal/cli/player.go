package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/bananamath/internal/api/request"
	"github.com/mcoot/bananamath/internal/api/response"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player account commands",
	}

	cmd.AddCommand(newPlayerAuthCmd("register", "Register a new player account", "/api/v1/players/register"))
	cmd.AddCommand(newPlayerAuthCmd("login", "Login with an existing account", "/api/v1/players/login"))
	cmd.AddCommand(newPlayerMeCmd())
	cmd.AddCommand(newPlayerLogoutCmd())

	return cmd
}

// newPlayerAuthCmd builds register and login, which share a request shape
// and both save the issued token
func newPlayerAuthCmd(use, short, path string) *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pass == "" {
				var err error
				pass, err = promptPassword(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}

			req := request.LoginRequest{Username: user, Password: pass}
			var result response.AuthResponse

			if err := client.Post(cmd.Context(), path, req, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.SessionToken); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newPlayerMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show current player info",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Profile

			if err := client.Get(cmd.Context(), "/api/v1/players/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPlayerLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(cmd.Context(), "/api/v1/players/logout", nil, nil); err != nil {
				return err
			}
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Logged out")
			return nil
		},
	}
}
