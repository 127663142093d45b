package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/textpolish/textpolish/internal/config"
	"github.com/textpolish/textpolish/internal/debuglog"
	"github.com/textpolish/textpolish/internal/exitcode"
	"github.com/textpolish/textpolish/internal/history"
	"github.com/textpolish/textpolish/internal/polish"
	"github.com/textpolish/textpolish/internal/tui/dialog"
)

var (
	runProvider    string
	runModel       string
	runInteractive bool
	runNoHistory   bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Polish a file or stdin",
	Long: `Polish the given file (or stdin when no file is given, or the file
is "-") and stream the result to stdout.

With --interactive, an inline dialog shows the text as it streams; apply it
with enter, regenerate with r, or cancel with esc.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPolish,
}

func init() {
	runCmd.Flags().StringVarP(&runProvider, "provider", "p", "", "Provider to use (fuzzy matched)")
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "Model override for the selected provider")
	runCmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "Open the polish dialog")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not record this run in history")
	rootCmd.AddCommand(runCmd)
}

func runPolish(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var providerName string
	if runProvider != "" {
		providerName, err = matchProvider(runProvider)
		if err != nil {
			return err
		}
	}
	cfg.ApplyOverrides(providerName, runModel)

	sc, err := config.Resolve(cfg.Provider, cfg)
	if err != nil {
		if inc, ok := err.(*config.IncompleteError); ok {
			path, _ := config.GetConfigPath()
			fmt.Fprintf(os.Stderr, "%s\nSet the missing fields in %s\n", inc.Error(), path)
			return exitcode.NeedsConfig(inc.Error())
		}
		return err
	}

	content, err := readInput(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("nothing to polish: input is empty")
	}

	var log *debuglog.Logger
	if debugEnabled || debuglog.Enabled() {
		log, err = debuglog.Open("polish")
		if err != nil {
			return err
		}
		defer log.Close()
	}

	transport := polish.NewHTTPTransport(cfg.ServiceURL)

	if runInteractive {
		return runDialog(transport, sc, content, log)
	}
	return runStream(cmd.Context(), transport, sc, content, log)
}

// runStream streams chunks straight to stdout; SIGINT cancels the session.
func runStream(parent context.Context, transport polish.Transport, sc polish.SessionConfig, content string, log *debuglog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = " polishing..."

	// Terminal outcome travels through the channel so the main goroutine
	// never reads hook state concurrently with the session goroutine. The
	// Failed send is deferred to OnError, which fires after the status and
	// carries the cause.
	type outcome struct {
		status polish.Status
		err    error
	}
	done := make(chan outcome, 1)
	finish := func(o outcome) {
		select {
		case done <- o:
		default:
		}
	}
	var printed int

	ctrl := polish.NewController(transport, polish.Hooks{
		OnText: func(s string) {
			if len(s) < printed {
				printed = 0
			}
			if len(s) > printed {
				os.Stdout.WriteString(s[printed:])
				printed = len(s)
			}
		},
		OnStatus: func(st polish.Status) {
			if st == polish.StatusStreaming {
				sp.Stop()
			}
			if st.Terminal() {
				sp.Stop()
				if st != polish.StatusFailed {
					finish(outcome{status: st})
				}
			}
		},
		OnError: func(err error) {
			finish(outcome{status: polish.StatusFailed, err: err})
		},
	})
	ctrl.SetLogger(log)

	sp.Start()
	if err := ctrl.Start(ctx, content, sc); err != nil {
		sp.Stop()
		return err
	}

	res := <-done
	switch res.status {
	case polish.StatusCompleted:
		fmt.Println()
		color.New(color.FgGreen).Fprintf(os.Stderr, "✓ polished with %s:%s\n", sc.Provider, sc.Model)
		recordRun(sc, content, ctrl.Snapshot(), res.status)
		return nil
	case polish.StatusAborted:
		color.New(color.FgYellow).Fprintln(os.Stderr, "cancelled")
		return exitcode.Cancel()
	default:
		return fmt.Errorf("polish failed: %w", res.err)
	}
}

// runDialog runs the interactive dialog and prints the applied snapshot.
func runDialog(transport polish.Transport, sc polish.SessionConfig, content string, log *debuglog.Logger) error {
	m := dialog.New(transport, sc, content)
	m.Controller().SetLogger(log)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dialog error: %w", err)
	}

	if !m.Applied() {
		return nil
	}
	fmt.Println(m.Result())
	recordRun(sc, content, m.Result(), polish.StatusCompleted)
	return nil
}

// recordRun stores a completed run; history failures are not fatal.
func recordRun(sc polish.SessionConfig, content, result string, st polish.Status) {
	if runNoHistory {
		return
	}
	path, err := history.DefaultPath()
	if err != nil {
		return
	}
	store, err := history.Open(path)
	if err != nil {
		return
	}
	defer store.Close()
	_, _ = store.Add(history.Run{
		SessionID: uuid.NewString(),
		Provider:  sc.Provider,
		Model:     sc.Model,
		Status:    st.String(),
		Content:   content,
		Result:    result,
	})
}

func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(data), nil
}

// matchProvider resolves a possibly-abbreviated provider name.
func matchProvider(query string) (string, error) {
	names := config.ProviderNames()
	for _, n := range names {
		if n == query {
			return n, nil
		}
	}
	matches := fuzzy.Find(query, names)
	if len(matches) > 0 {
		return names[matches[0].Index], nil
	}
	return "", fmt.Errorf("unknown provider %q (supported: %s)", query, strings.Join(names, ", "))
}
