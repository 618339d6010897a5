// main is the entrypoint for the optiscan CLI.
package main

import (
	"os"

	"github.com/optiscan/optiscan/cmd"
	"github.com/optiscan/optiscan/internal/contract"
	"github.com/optiscan/optiscan/internal/mlstore"
)

func main() {
	cmd.SetStoreManager(mlstore.Manager)

	err := cmd.Execute()

	// Close stores before exiting so SQLite flushes cleanly.
	mlstore.CloseStores()

	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
