package main

import (
	"fmt"

	"ai-meetnotes/internal/entity"
	"ai-meetnotes/pkg/store"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func enhanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enhance [session-id]",
		Short: "Rewrite a session's raw notes and stream the result",
		Args:  cobra.ExactArgs(1),
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
			opened, err := e.c.SessionService.Open(ctx, e.userId, sessionId)
			if err != nil {
				return err
			}

			key := sessionId.String()
			printer := &deltaPrinter{last: opened.Session.EnhancedMemoHtml, out: color.New(color.FgCyan)}
			unsubscribe := e.c.Broker.Subscribe(func(c store.Change) {
				if c.Kind != store.ChangeSessionUpdated || c.Key != key {
					return
				}
				if s, ok := c.Payload.(*entity.Session); ok && s.EnhancedMemoHtml != printer.last {
					if printer.last == opened.Session.EnhancedMemoHtml {
						// First chunk replaces the previous enhancement.
						printer.last = ""
					}
					printer.print(s.EnhancedMemoHtml)
				}
			})
			defer unsubscribe()

			if _, err := e.c.EnhanceService.Start(ctx, e.userId, sessionId); err != nil {
				return err
			}
			e.c.EnhanceService.Wait()
			fmt.Println()

			res, err := e.c.SessionService.Open(ctx, e.userId, sessionId)
			if err != nil {
				return err
			}
			if res.Session.EnhancedMemoHtml == "" {
				color.Red("Enhancement produced nothing")
				return nil
			}
			color.Green("Enhanced note saved (%d bytes)", len(res.Session.EnhancedMemoHtml))
			return nil
		},
	}
}
