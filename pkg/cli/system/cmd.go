// Package system provides the "tosctl system" command group.
package system

import (
	"fmt"

	"github.com/spf13/cobra"

	tcli "github.com/tos-desktop/tos/pkg/cli"
	"github.com/tos-desktop/tos/pkg/types"
)

var rootCmd = &cobra.Command{
	Use:   "system",
	Short: "Manage the TOS system",
}

// New returns the root command for the system group, bound to client.
func New(client tcli.DaemonClient) *cobra.Command {
	rootCmd.AddCommand(newResetCmd(client))
	return rootCmd
}

func newResetCmd(client tcli.DaemonClient) *cobra.Command {
	var option string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restart the compositor or log out",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := parseOption(option)
			if err != nil {
				return tcli.NewExitError(tcli.ExitUsageError, err)
			}
			if err := client.ResetSystem(opt); err != nil {
				return tcli.NewExitError(tcli.ExitFailure, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&option, "option", "restart-compositor", "restart-compositor | log-out")
	return cmd
}

func parseOption(s string) (types.SystemResetOption, error) {
	switch s {
	case "restart-compositor":
		return types.OptionRestartCompositor, nil
	case "log-out":
		return types.OptionLogOut, nil
	default:
		return 0, fmt.Errorf("system reset: unknown option %q", s)
	}
}
