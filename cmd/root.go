package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faust-ai/faust/internal/config"
	"github.com/faust-ai/faust/internal/provider"
	"github.com/faust-ai/faust/internal/tui"
)

var (
	cfgFile      string
	userFlag     string
	levelFlag    string
	sessionFlag  string
	modelFlag    string
	providerFlag string
	useTUI       bool

	// Package-level version info, set by Execute().
	appVersion string
)

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	appVersion = version

	rootCmd := &cobra.Command{
		Use:   "faust",
		Short: "Terminal math tutor",
		Long: "faust is an AI mathematics tutor for the terminal. It streams answers\n" +
			"with LaTeX math rendered as Unicode and adapts its teaching to an\n" +
			"academic level (child, normal, academic).",
		// Running faust with no subcommand starts chat mode.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Default TUI on when stdout is a terminal and --tui was not explicitly set.
			if !cmd.Root().PersistentFlags().Changed("tui") && tui.IsTerminal() {
				useTUI = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ~/.config/faust/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "account username (default: $USER)")
	rootCmd.PersistentFlags().StringVarP(&levelFlag, "level", "l", "", "academic level: child | normal | academic")
	rootCmd.PersistentFlags().StringVarP(&sessionFlag, "session", "s", "", "session name to open (default: most recent)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "override model")
	rootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "", "override provider (gemini | anthropic)")
	rootCmd.PersistentFlags().BoolVar(&useTUI, "tui", false, "use TUI mode (default: auto-detect terminal)")

	// Subcommands
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig loads configuration, applying CLI flag overrides.
func initConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override config values
	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if levelFlag != "" {
		cfg.DefaultLevel = levelFlag
	}

	return cfg
}

// buildProvider creates a Provider instance based on configuration.
func buildProvider(cfg *config.Config) (provider.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pc := cfg.GetProviderConfig(cfg.Provider)

	// Determine model: CLI flag > config file > provider default (set later)
	model := cfg.Model
	if model == "" {
		model = pc.Model
	}

	switch cfg.Provider {
	case "gemini":
		return provider.NewGeminiProvider(pc.APIKey, model), nil
	case "anthropic":
		return provider.NewAnthropicProvider(pc.APIKey, model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: gemini, anthropic)", cfg.Provider)
	}
}
