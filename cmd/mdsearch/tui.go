package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lawrencelj/mdsearch/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [path]",
	Short: "Search interactively in a terminal UI",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			flagRoot = args[0]
		}
		cfg, err := setup()
		if err != nil {
			return err
		}

		eng, _, src, _ := buildEngine(cfg, nil)
		count, err := indexCorpus(cmd.Context(), eng, src)
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("no markdown files found under %s", cfg.Source.Root)
		}

		program := tea.NewProgram(tui.New(eng, eng.References()), tea.WithAltScreen())
		_, err = program.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
