package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/textpolish/textpolish/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent polish runs",
	RunE:  listHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("History cleared.")
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	path, err := history.DefaultPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path)
}

func listHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	for _, r := range runs {
		fmt.Printf("%4d  %s  %-10s %-20s %s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Provider,
			r.Model,
			preview(r.Result, 60))
	}
	return nil
}

func preview(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
