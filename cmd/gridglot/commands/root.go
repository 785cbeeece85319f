// Package commands implements the CLI commands for gridglot.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gridglot/gridglot/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "gridglot",
	Short: "AI-powered spreadsheet cleaner and translator",
	Long: `Gridglot cleans HTML-encoded spreadsheet content, translates it in
batches through an AI provider, and re-exports it with the original
layout intact.

Examples:
  # Translate a workbook into Russian
  gridglot translate catalog.xlsx -t ru -o catalog.ru.xlsx

  # Clean entities and markup without translating
  gridglot clean export.csv -o clean.csv --format csv

  # Check dataset quality before translating
  gridglot analyze quiz.xlsx

  # Use local Ollama
  gridglot translate catalog.xlsx -t de -p ollama -m llama3.2

  # Run the HTTP API
  gridglot serve --addr :8080`,
	Version: version.String(),
}

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.gridglot.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".gridglot")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("GRIDGLOT")
	viper.AutomaticEnv()

	// Also check common API key env vars
	_ = viper.BindEnv("api_key", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "OPENROUTER_API_KEY")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
