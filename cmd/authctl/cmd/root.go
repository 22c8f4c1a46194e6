// Package cmd implements the authctl CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// Version is set at build time
	Version = "0.1.0"

	// Global flags
	outputFormat string
	serverURL    string
	timeout      time.Duration

	// Shared agent client
	agent *client
)

var (
	okFmt   = color.New(color.FgGreen).SprintFunc()
	warnFmt = color.New(color.FgYellow).SprintFunc()
	errFmt  = color.New(color.FgRed, color.Bold).SprintFunc()
	dimFmt  = color.New(color.Faint).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "authctl",
	Short: "Operator CLI for the stayauth session agent",
	Long: `authctl talks to a running stayauth agent.

It logs in with a federated credential, shows the active session,
reads the session the way a background worker does, and inspects or
drives the connectivity advisory.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		switch outputFormat {
		case "table", "json", "yaml":
		default:
			return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
		}
		agent = newClient(serverURL, timeout)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Agent URL (env: STAYAUTH_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func defaultServerURL() string {
	if v := os.Getenv("STAYAUTH_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// formatOutput writes data as JSON or YAML. Table output is handled by each command.
func formatOutput(w io.Writer, data interface{}) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case "yaml":
		out, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return nil
	}
}
