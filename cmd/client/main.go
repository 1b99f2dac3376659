package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Usage examples on the command line:
// > go run . list
// > go run . create --name "Hans Wurst" --birth-date 1969-03-02 --email hans@example.com
// > go run . bench --sizes 1000,5000
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var server string
	root := &cobra.Command{
		Use:           "client",
		Short:         "Command line client for the contacts service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&server, "server", "http://localhost:8080", "base URL of the contacts service")

	serverURL := func() string { return server }
	root.AddCommand(
		newListCommand(serverURL),
		newGetCommand(serverURL),
		newCreateCommand(serverURL),
		newUpdateCommand(serverURL),
		newDeleteCommand(serverURL),
		newBenchCommand(serverURL),
	)
	return root
}
