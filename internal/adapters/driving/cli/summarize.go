package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <url>",
	Short: "Summarise a document",
	Long: `Downloads the document at url and summarises it section by section,
then combines the section summaries into one. The document is not indexed.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	if svc.Analysis == nil {
		return errNoAnalysis
	}

	summary, err := svc.Analysis.SummarizeSource(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("summarize failed: %w", err)
	}
	cmd.Println(summary)
	return nil
}
