package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/textpolish/textpolish/internal/exitcode"
)

var rootCmd = &cobra.Command{
	Use:   "textpolish",
	Short: "Polish text with a streaming AI backend",
	Long: `textpolish streams your text through an AI polishing backend and
prints the improved version as it is generated.

Examples:
  textpolish run draft.md             # polish a file
  cat draft.md | textpolish run       # polish stdin
  textpolish run -i draft.md          # interactive dialog (apply/regenerate)

  textpolish config                   # view configuration
  textpolish history                  # recent polish runs`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

var debugEnabled bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "Write diagnostic logs to the state directory")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(exitcode.ExitError); ok {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
