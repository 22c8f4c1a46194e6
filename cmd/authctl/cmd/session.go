package cmd

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"stayauth/internal/domain"
	"stayauth/internal/relay"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(workerCmd)
}

// SessionOutput represents the JSON/YAML output for session commands.
type SessionOutput struct {
	UserID  string `json:"user_id" yaml:"user_id"`
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Role    string `json:"role" yaml:"role"`
	Token   string `json:"token" yaml:"token"`
	Offline bool   `json:"offline" yaml:"offline"`
}

func newSessionOutput(s *domain.Session) SessionOutput {
	return SessionOutput{
		UserID:  s.User.ID,
		Name:    s.User.Name,
		Email:   s.User.Email,
		Role:    s.User.Role,
		Token:   s.Token,
		Offline: s.Offline,
	}
}

var loginCmd = &cobra.Command{
	Use:   "login <credential>",
	Short: "Authenticate with a federated credential",
	Long: `Send a credential to the agent. The agent verifies it remotely and
falls back to an offline session when the verifier cannot be used.

Examples:
  authctl login eyJhbGciOi...
  authctl login "$CREDENTIAL" -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var session domain.Session
		err := agent.do(cmd.Context(), http.MethodPost, "/api/session/login",
			map[string]string{"credential": args[0]}, &session)
		if err != nil {
			return err
		}
		return printSession(cmd, &session)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		var session domain.Session
		err := agent.do(cmd.Context(), http.MethodGet, "/api/session", nil, &session)
		var apiErr *apiError
		if stderrors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("not logged in")
		}
		if err != nil {
			return err
		}
		return printSession(cmd, &session)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear every stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := agent.do(cmd.Context(), http.MethodDelete, "/api/session", nil, nil); err != nil {
			return err
		}
		if outputFormat != "table" {
			return formatOutput(cmd.OutOrStdout(), map[string]bool{"logged_out": true})
		}
		fmt.Fprintln(cmd.OutOrStdout(), okFmt("Logged out"))
		return nil
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker-data",
	Short: "Read the offline session the way a background worker does",
	Long: `Ask the agent for auth data through the relay bridge. The reply is
either the offline session or an error such as "No auth data available".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var reply relay.Reply
		if err := agent.do(cmd.Context(), http.MethodGet, "/api/worker/auth-data", nil, &reply); err != nil {
			return err
		}
		if outputFormat != "table" {
			return formatOutput(cmd.OutOrStdout(), reply)
		}
		if reply.Error != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", warnFmt("No data:"), reply.Error)
			return nil
		}
		return printSession(cmd, reply.Session())
	},
}

func printSession(cmd *cobra.Command, s *domain.Session) error {
	if outputFormat != "table" {
		return formatOutput(cmd.OutOrStdout(), newSessionOutput(s))
	}

	kind := okFmt("verified")
	if s.Offline {
		kind = warnFmt("offline")
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "User:    %s %s\n", s.User.Name, dimFmt("("+s.User.ID+")"))
	fmt.Fprintf(w, "Email:   %s\n", s.User.Email)
	fmt.Fprintf(w, "Role:    %s\n", s.User.Role)
	fmt.Fprintf(w, "Session: %s\n", kind)
	fmt.Fprintf(w, "Token:   %s\n", s.Token)
	return nil
}
