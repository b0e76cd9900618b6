package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var risksJSON bool

var risksCmd = &cobra.Command{
	Use:   "risks <url>",
	Short: "Scan a document for risky clauses",
	Long: `Downloads the document at url and checks it against a checklist of
risky clause categories such as auto-renewal, arbitration and liability limits.
Each finding quotes the clause and explains the concern.`,
	Args: cobra.ExactArgs(1),
	RunE: runRisks,
}

func init() {
	risksCmd.Flags().BoolVar(&risksJSON, "json", false, "output findings as JSON")
	rootCmd.AddCommand(risksCmd)
}

type findingOutput struct {
	Category    string `json:"category"`
	Quote       string `json:"quote"`
	Explanation string `json:"explanation"`
}

func runRisks(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	if svc.Analysis == nil {
		return errNoAnalysis
	}

	findings, err := svc.Analysis.ScanSource(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("risk scan failed: %w", err)
	}

	if risksJSON {
		out := make([]findingOutput, len(findings))
		for i, f := range findings {
			out[i] = findingOutput{Category: f.Category, Quote: f.Quote, Explanation: f.Explanation}
		}
		return printJSON(cmd, map[string][]findingOutput{"findings": out})
	}

	printFindings(cmd, findings)
	return nil
}

func printFindings(cmd *cobra.Command, findings []domain.RiskFinding) {
	if len(findings) == 0 {
		cmd.Println("No risky clauses found.")
		return
	}

	cmd.Printf("Found %d risky clause(s):\n\n", len(findings))
	for _, f := range findings {
		cmd.Printf("[%s]\n", f.Category)
		cmd.Printf("  %q\n", f.Quote)
		if f.Explanation != "" {
			cmd.Printf("  %s\n", f.Explanation)
		}
		cmd.Println()
	}
}
