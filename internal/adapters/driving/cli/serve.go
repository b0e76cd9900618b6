package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API under /api/v1.

Routes:
  POST /upload       upload a document by URL or file and start a session
  POST /run          answer questions about the session's document
  POST /summarize    summarise the session's document
  POST /risks        scan the session's document for risky clauses
  POST /ask          answer questions about a document URL without a session
  GET  /cache/stats  list cached documents
  GET  /health       liveness probe

When a bearer token is configured every route except /health requires
"Authorization: Bearer <token>".`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	defer svc.close()

	settings := settingsOf(svc)
	addr := settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := httpapi.New(svc.QA, svc.Analysis, httpapi.Config{
		Addr:        addr,
		BearerToken: settings.Server.BearerToken,
	})

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("docqa API listening on %s\n", server.Addr())
	return server.Run(ctx)
}
