package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "List indexed terms completing a prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		eng, _, src, _ := buildEngine(cfg, nil)
		if _, err := indexCorpus(cmd.Context(), eng, src); err != nil {
			return err
		}

		suggestions := eng.Suggestions(args[0])
		if len(suggestions) == 0 {
			fmt.Printf("No terms starting with %q\n", args[0])
			return nil
		}
		for _, s := range suggestions {
			fmt.Println(s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}
