package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lawrencelj/mdsearch/internal/docsource"
	"github.com/lawrencelj/mdsearch/pkg/document"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <file>",
	Short: "Print the heading outline of a markdown file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		src := docsource.New(cfg.Source)
		doc, err := src.LoadFile(args[0])
		if err != nil {
			return err
		}

		if len(doc.Outline) == 0 {
			fmt.Printf("%s has no headings\n", args[0])
			return nil
		}
		fmt.Println(doc.Title)
		printOutline(doc.Outline, 0)
		return nil
	},
}

func printOutline(headings []document.Heading, depth int) {
	for _, h := range headings {
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth+1), h.Title)
		printOutline(h.Children, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(outlineCmd)
}
