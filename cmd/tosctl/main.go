// Command tosctl is the TOS command-line client, talking to a running
// tosd daemon over its local control socket.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tcli "github.com/tos-desktop/tos/pkg/cli"
	"github.com/tos-desktop/tos/pkg/cli/sector"
	"github.com/tos-desktop/tos/pkg/cli/system"
)

func main() {
	client, err := newSocketClient(socketPathFromEnv())
	if err != nil {
		fmt.Fprintln(os.Stderr, "tosctl:", err)
		os.Exit(tcli.ExitFailure)
	}
	defer client.Close()

	root := &cobra.Command{
		Use:   "tosctl",
		Short: "Control a running TOS daemon",
	}
	root.AddCommand(sector.New(client), system.New(client))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tosctl:", err)
		os.Exit(tcli.ExitCodeFor(err))
	}
}

func socketPathFromEnv() string {
	if path := os.Getenv("TOS_CONTROL_SOCKET"); path != "" {
		return path
	}
	return "/run/tos/control.sock"
}
