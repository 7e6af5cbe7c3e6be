// Command notectl drives the chat and enhancement pipelines from a terminal
// against the configured database and model.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	flagUser    string
	flagVerbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "notectl",
		Short:         "Meeting notes AI from the command line",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", os.Getenv("NOTECTL_USER"), "acting user id (or NOTECTL_USER)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log to stdout")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(enhanceCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(suggestCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
