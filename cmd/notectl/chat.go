package main

import (
	"fmt"
	"strings"

	"ai-meetnotes/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	var quick bool

	cmd := &cobra.Command{
		Use:   "chat [session-id] [message...]",
		Short: "Ask about a session and stream the reply",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionId, err := sessionArg(args[0])
			if err != nil {
				return err
			}

			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			ctx := cmd.Context()
			if _, err := e.c.SessionService.Open(ctx, e.userId, sessionId); err != nil {
				return err
			}

			req := &dto.SendChatRequest{Content: strings.Join(args[1:], " ")}
			turn, err := e.c.ChatService.Begin(ctx, e.userId, sessionId, req, quick)
			if limit, ok := dto.AsLimitExceeded(err); ok {
				color.Red("Free tier limit reached (%d/%d messages).", limit.Used, limit.Limit)
				return nil
			}
			if err != nil {
				return err
			}

			printer := &deltaPrinter{out: color.New(color.FgCyan)}
			unsubscribe := e.c.ChatService.Watch(sessionId, turn.MessageID(), printer.print)
			out := turn.Run(ctx)
			unsubscribe()
			fmt.Println()

			switch {
			case out.Fallback:
				color.Red("%s", out.Content)
			case printer.last != out.Content:
				// Trimmed on commit; show what was stored.
				color.Green("%s", out.Content)
			}
			if !out.Persisted {
				color.Yellow("warning: reply was not saved")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quick, "quick-action", "q", false, "send as a quick action")
	return cmd
}
