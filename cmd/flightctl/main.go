package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cx-tal-miterani/flight-search/cmd/flightctl/commands"
)

func main() {
	root := &cobra.Command{
		Use:   "flightctl",
		Short: "Flight search CLI - itinerary search and seat reservations",
	}

	root.PersistentFlags().String("api", "http://localhost:8080", "Base URL of the flight search API")

	root.AddCommand(commands.SearchCmd())
	root.AddCommand(commands.GetCmd())
	root.AddCommand(commands.ReserveCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print flightctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("flightctl v0.1.0")
		},
	}
}
