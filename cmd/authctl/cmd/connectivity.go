package cmd

import (
	"fmt"
	"net/http"

	"stayauth/internal/domain"
	"stayauth/internal/service/connectivity"

	"github.com/spf13/cobra"
)

func init() {
	advisoryCmd.AddCommand(advisoryDismissCmd)
	rootCmd.AddCommand(advisoryCmd)
	rootCmd.AddCommand(eventCmd)
}

var advisoryCmd = &cobra.Command{
	Use:   "advisory",
	Short: "Show the connectivity advisory",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status connectivity.Status
		if err := agent.do(cmd.Context(), http.MethodGet, "/api/connectivity", nil, &status); err != nil {
			return err
		}
		return printStatus(cmd, status)
	},
}

var advisoryDismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Hide the current advisory until it changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		var status connectivity.Status
		if err := agent.do(cmd.Context(), http.MethodPost, "/api/connectivity/dismiss", nil, &status); err != nil {
			return err
		}
		return printStatus(cmd, status)
	},
}

var eventCmd = &cobra.Command{
	Use:       "event <online|offline>",
	Short:     "Send a platform connectivity event",
	ValidArgs: []string{string(connectivity.EventOnline), string(connectivity.EventOffline)},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		var status connectivity.Status
		err := agent.do(cmd.Context(), http.MethodPost, "/api/connectivity/events",
			map[string]string{"type": args[0]}, &status)
		if err != nil {
			return err
		}
		return printStatus(cmd, status)
	},
}

func printStatus(cmd *cobra.Command, status connectivity.Status) error {
	if outputFormat != "table" {
		return formatOutput(cmd.OutOrStdout(), status)
	}

	state := okFmt(string(status.State))
	if status.State != domain.Online {
		state = errFmt(string(status.State))
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "State:    %s\n", state)
	fmt.Fprintf(w, "Advisory: %s\n", status.Advisory)
	switch {
	case status.Advisory == connectivity.AdvisoryNone:
		fmt.Fprintf(w, "Banner:   %s\n", dimFmt("hidden"))
	case !status.Visible:
		fmt.Fprintf(w, "Banner:   %s %s\n", dimFmt("dismissed"), status.Message)
	default:
		fmt.Fprintf(w, "Banner:   %s\n", warnFmt(status.Message))
	}
	return nil
}
