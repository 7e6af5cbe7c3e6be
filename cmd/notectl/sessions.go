package main

import (
	"fmt"
	"time"

	"ai-meetnotes/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and create sessions",
	}
	cmd.AddCommand(sessionsListCmd())
	cmd.AddCommand(sessionsCreateCmd())
	return cmd
}

func sessionsListCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.c.SessionService.List(cmd.Context(), e.userId, query)
			if err != nil {
				return err
			}
			if len(res.Sessions) == 0 {
				color.Yellow("No sessions")
				return nil
			}

			bold := color.New(color.Bold)
			faint := color.New(color.Faint)
			for _, s := range res.Sessions {
				title := s.Title
				if title == "" {
					title = "Untitled"
				}
				bold.Printf("%s  ", title)
				faint.Printf("%s  %s\n", s.Id, s.CreatedAt.Format(time.DateTime))
				if s.Excerpt != "" {
					fmt.Printf("    %s\n", s.Excerpt)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by title or note text")
	return cmd
}

func sessionsCreateCmd() *cobra.Command {
	var raw string

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			req := &dto.CreateSessionRequest{RawMemoHtml: raw}
			if len(args) == 1 {
				req.Title = args[0]
			}
			res, err := e.c.SessionService.Create(cmd.Context(), e.userId, req)
			if err != nil {
				return err
			}
			color.Green("%s", res.Id)
			return nil
		},
	}

	cmd.Flags().StringVar(&raw, "raw", "", "initial raw note HTML")
	return cmd
}
