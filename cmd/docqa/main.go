// Command docqa answers questions about PDF and plain text documents.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
