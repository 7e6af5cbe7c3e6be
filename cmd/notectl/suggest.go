package main

import (
	"ai-meetnotes/pkg/search"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest [input]",
		Short: "Show search bar suggestions for an input such as \"@jan\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.c.SearchService.Suggestions(cmd.Context(), e.userId, args[0])
			if err != nil {
				return err
			}
			if res.Trigger == search.TriggerNone {
				color.Yellow("No @ or # trigger in input")
				return nil
			}

			faint := color.New(color.Faint)
			for _, s := range res.Suggestions {
				faint.Printf("%-8s ", s.Type)
				color.Cyan("%s", s.Name)
			}
			return nil
		},
	}
}
