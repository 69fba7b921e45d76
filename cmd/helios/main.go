package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helios-home/helios/internal/interfaces/cli/migrate"
	"github.com/helios-home/helios/internal/interfaces/cli/server"
)

func main() {
	root := &cobra.Command{
		Use:   "helios",
		Short: "Helios home network control plane",
		Long:  `Helios keeps a home network under management: it scans devices through the router API, serves the management REST API and maintains authenticated connections to service agents.`,
	}

	root.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
