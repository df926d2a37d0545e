package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/docsight-labs/docsight-cli/internal/adapters/driven/config/file"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the answer provider, limits and other options.

Settings live in the config file; run 'docsight settings show' to see its
location and current values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the answer provider API key",
	Long: `Prompts for the API key without echoing it and stores it in the config
file with restricted permissions.`,
	RunE: runSettingsSetKey,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if appConfig == nil {
		return errors.New("configuration not loaded")
	}

	cmd.Printf("Config file: %s\n", file.Path(configDir))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data directory: %s\n", appConfig.DataDir)
	cmd.Println()

	cmd.Println("[Limits]")
	cmd.Printf("  Max pages:     %d\n", appConfig.Limits.MaxPages)
	cmd.Printf("  Max file size: %d bytes\n", appConfig.Limits.MaxFileBytes)
	cmd.Printf("  Render DPI:    %d\n", appConfig.Limits.DPI)
	cmd.Println()

	cmd.Println("[Embedding]")
	baseURL := appConfig.Embedding.BaseURL
	if baseURL == "" {
		baseURL = "(default)"
	}
	model := appConfig.Embedding.Model
	if model == "" {
		model = "(default)"
	}
	cmd.Printf("  Base URL: %s\n", baseURL)
	cmd.Printf("  Model:    %s\n", model)
	cmd.Println()

	cmd.Println("[Answer]")
	cmd.Printf("  Provider: %s\n", appConfig.Answer.Provider)
	if appConfig.Answer.Provider != "stub" {
		if appConfig.Answer.APIKey != "" {
			cmd.Printf("  API Key:  %s\n", maskAPIKey(appConfig.Answer.APIKey))
		} else {
			cmd.Printf("  API Key:  (not set)\n")
			cmd.Println()
			cmd.Println("Run 'docsight settings set-key' to configure the API key.")
		}
	}

	return nil
}

func runSettingsSetKey(cmd *cobra.Command, _ []string) error {
	if appConfig == nil {
		return errors.New("configuration not loaded")
	}

	cmd.Print("Enter API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key must not be empty")
	}

	appConfig.Answer.APIKey = apiKey
	if appConfig.Answer.Provider == "stub" {
		appConfig.Answer.Provider = "openai"
	}
	if err := file.Save(configDir, appConfig); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	cmd.Printf("API key saved for provider %s.\n", appConfig.Answer.Provider)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
