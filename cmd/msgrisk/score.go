package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antifraud/msgrisk/internal/application/dto"
	"github.com/antifraud/msgrisk/internal/application/usecase"
	"github.com/antifraud/msgrisk/internal/bootstrap"
)

func (c *cli) scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score [text]",
		Short: "Score a message and print the result as JSON",
		Long: `Score a message with the configured model. The text is taken from the
arguments, or from stdin when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(args, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			stack, err := bootstrap.NewScoringStack(cmd.Context(), c.cfg, nil, c.logger)
			if err != nil {
				return err
			}
			defer func() { _ = stack.Close() }()

			resp, err := usecase.NewScoreMessage(stack.Scorer, nil).Execute(cmd.Context(), dto.ScoreMessageRequest{Text: text})
			if err != nil {
				return err
			}
			return printJSON(cmd, resp)
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
