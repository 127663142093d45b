package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/textpolish/textpolish/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	RunE:  showConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE:  initConfig,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	fmt.Printf("Config file: %s", path)
	if !config.Exists() {
		fmt.Print(" (not created yet, run `textpolish config init`)")
	}
	fmt.Println()
	fmt.Printf("Service URL: %s\n", cfg.ServiceURL)
	fmt.Printf("Provider:    %s\n\n", cfg.Provider)

	bold := color.New(color.Bold)
	for _, d := range config.Descriptors() {
		pc := cfg.Providers[d.Name]
		bold.Printf("%s\n", d.Name)
		fmt.Printf("  api_key:  %s\n", redact(pc.APIKey))
		model := pc.Model
		if model == "" && d.DefaultModel != "" {
			model = d.DefaultModel + " (default)"
		}
		fmt.Printf("  model:    %s\n", orUnset(model))
		if d.RequiresBaseURL {
			fmt.Printf("  base_url: %s\n", orUnset(pc.BaseURL))
		}
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	if config.Exists() {
		path, _ := config.GetConfigPath()
		return fmt.Errorf("config already exists at %s", path)
	}

	cfg := &config.Config{
		Provider:   "openai",
		ServiceURL: config.DefaultServiceURL,
		Providers: map[string]config.ProviderConfig{
			"openai":   {APIKey: "${OPENAI_API_KEY}"},
			"deepseek": {APIKey: "${DEEPSEEK_API_KEY}", Model: "deepseek-chat"},
		},
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	path, _ := config.GetConfigPath()
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func redact(key string) string {
	if key == "" {
		return "(unset)"
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 4) + key[len(key)-4:]
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
