// Package cli provides the command-line interface for the Krishi server.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/krishi-ai/krishi-go/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	userID    string
	language  string

	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "krishi",
	Short: "Farming advisory assistant",
	Long: `Krishi is a farming advisory assistant. Ask questions about your
crops, check mandi prices and the weather, and browse the community feed,
all against a running Krishi server.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		apiClient = client.New(serverURL)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (default KRISHI_SERVER_URL or localhost:8080)")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "farmer id")
	rootCmd.PersistentFlags().StringVarP(&language, "language", "l", "en", "reply language code")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(marketCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(feedCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
