package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"routinely/internal/assistant"
)

var chatTranscriptFile string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the assistant. The full
conversation is kept as context, so follow-up questions work.

Slash commands inside the session:
  /routine        generate a routine from the current selection
  /pick <id>      toggle a product in the selection
  /drop <id>      remove a product from the selection
  /selected       show the current selection
  /save <file>    write the transcript to a Markdown file
  /quit           leave the session

Examples:
  routinely chat
  routinely chat --transcript session.md`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatTranscriptFile, "transcript", "", "write the transcript to a file on exit")
}

func runChat(cmd *cobra.Command, args []string) error {
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println("Chatting with the routine assistant. Type /quit to leave, /routine for a routine.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runSlashCommand(cmd, line); quit {
				break
			}
			continue
		}

		reply, err := runWithSpinner("Thinking...", func() (string, error) {
			return orchestrator.Chat(cmd.Context(), line)
		})
		if err != nil {
			printChatError(err)
			continue
		}
		fmt.Printf("\n%s\n\n", reply)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if chatTranscriptFile != "" {
		if err := saveTranscript(chatTranscriptFile); err != nil {
			return err
		}
	}
	return nil
}

// runSlashCommand dispatches a session command. Returns true when the
// session should end.
func runSlashCommand(cmd *cobra.Command, line string) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/routine":
		reply, err := runWithSpinner("Generating routine...", func() (string, error) {
			return orchestrator.GenerateRoutine(cmd.Context())
		})
		if err != nil {
			printChatError(err)
			return false
		}
		fmt.Printf("\n%s\n\n", reply)

	case "/pick":
		if len(fields) < 2 {
			fmt.Println("Usage: /pick <product-id>")
			return false
		}
		for _, id := range fields[1:] {
			p, ok := products.FindByID(id)
			if !ok {
				fmt.Printf("Unknown product id: %s\n", id)
				continue
			}
			if selection.Toggle(p) {
				fmt.Printf("+ %s (%s)\n", p.Name, p.Brand)
			} else {
				fmt.Printf("- %s (%s)\n", p.Name, p.Brand)
			}
		}

	case "/drop":
		if len(fields) < 2 {
			fmt.Println("Usage: /drop <product-id>")
			return false
		}
		for _, id := range fields[1:] {
			selection.Remove(id)
		}
		fmt.Printf("%d selected\n", selection.Len())

	case "/selected":
		list := selection.Products()
		if len(list) == 0 {
			fmt.Println("No products selected.")
			return false
		}
		for _, p := range list {
			fmt.Printf("%-6s %-28s %s\n", p.ID, p.Name, p.Brand)
		}

	case "/save":
		if len(fields) != 2 {
			fmt.Println("Usage: /save <file>")
			return false
		}
		if err := saveTranscript(fields[1]); err != nil {
			fmt.Printf("Failed to save transcript: %v\n", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n", fields[0])
	}
	return false
}

func printChatError(err error) {
	switch {
	case errors.Is(err, assistant.ErrEmptySelection):
		fmt.Println("No products selected. Use /pick <id> first.")
	case errors.Is(err, assistant.ErrNoContent):
		fmt.Println("The assistant returned no content. Try again.")
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func saveTranscript(path string) error {
	transcript := orchestrator.History().ExportMarkdown()
	if err := os.WriteFile(path, []byte(transcript), 0644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	fmt.Printf("Transcript written to %s\n", path)
	return nil
}
