package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antifraud/msgrisk/internal/application/usecase"
	"github.com/antifraud/msgrisk/internal/bootstrap"
)

func (c *cli) keywordsCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "keywords [text]",
		Short: "Extract suspicious keywords (no model needed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(args, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			kwCfg := c.cfg.Keywords
			if topK > 0 {
				kwCfg.TopK = topK
			}
			extractor, err := bootstrap.NewKeywordExtractor(kwCfg)
			if err != nil {
				return err
			}

			return printJSON(cmd, map[string][]string{
				"keywords": usecase.NewExtractKeywords(extractor).Execute(text),
			})
		},
	}
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of keywords to return (default from config)")
	return cmd
}
