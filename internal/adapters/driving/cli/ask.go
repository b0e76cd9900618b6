package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask <url> <question>...",
	Short: "Answer questions about a document",
	Long: `Downloads the PDF or plain text document at url, indexes it and answers
each question from its content. Answers are printed in question order.

A document already seen by this process is not downloaded again.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output answers as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	url, questions := args[0], args[1:]
	answers, err := svc.QA.Ask(commandContext(cmd), url, questions)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, map[string][]string{"answers": answers})
	}

	for i, q := range questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		cmd.Printf("Q%d: %s\n", i+1, q)
		cmd.Printf("A%d: %s\n", i+1, answer)
		if i < len(questions)-1 {
			cmd.Println()
		}
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
