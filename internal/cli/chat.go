package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/krishi-ai/krishi-go/internal/models"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the advisory assistant",
	Long: `Chat with the advisory assistant. With a message argument, sends
one message and prints the reply. Without arguments, starts an interactive
session; type "exit" or press Ctrl-D to leave.

Examples:
  krishi chat -u farmer-1 "How do I treat leaf curl on tomato?"
  krishi chat -u farmer-1 -l hi`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	if userID == "" {
		return fmt.Errorf("--user is required")
	}
	ctx := cmd.Context()

	if len(args) == 1 {
		return sendOne(ctx, args[0])
	}

	fmt.Println(dimStyle.Render("Interactive session. Type \"exit\" to leave."))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(userStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := sendOne(ctx, line); err != nil {
			fmt.Println(errorStyle.Render("error: " + err.Error()))
		}
	}
}

func sendOne(ctx context.Context, message string) error {
	res, err := apiClient.SendMessage(ctx, userID, message, language)
	if err != nil {
		return err
	}
	fmt.Println(assistantStyle.Render(res.ReplyText))
	return nil
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userID == "" {
			return fmt.Errorf("--user is required")
		}
		turns, err := apiClient.History(cmd.Context(), userID, historyLimit)
		if err != nil {
			return err
		}
		if len(turns) == 0 {
			fmt.Println(dimStyle.Render("no conversation yet"))
			return nil
		}
		for _, turn := range turns {
			printTurn(turn)
		}
		return nil
	},
}

func printTurn(turn models.Turn) {
	label := userStyle.Render("you")
	if turn.Role == models.RoleAssistant {
		label = assistantStyle.Render("krishi")
	}
	content := turn.Content
	if id, ok := turn.FileID(); ok {
		content = dimStyle.Render("[image " + id + "]")
	}
	fmt.Printf("%s  %s\n", label, content)
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userID == "" {
			return fmt.Errorf("--user is required")
		}
		if err := apiClient.ClearHistory(cmd.Context(), userID); err != nil {
			return err
		}
		fmt.Println("conversation cleared")
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show only the most recent turns")
}
