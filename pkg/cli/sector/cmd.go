// Package sector provides the "tosctl sector" command group.
package sector

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	tcli "github.com/tos-desktop/tos/pkg/cli"
	"github.com/tos-desktop/tos/pkg/types"
)

var rootCmd = &cobra.Command{
	Use:   "sector",
	Short: "Manage sectors",
	Long:  "Export, import, and reset TOS sectors against a running daemon.",
}

// New returns the root command for the sector group, bound to client.
func New(client tcli.DaemonClient) *cobra.Command {
	rootCmd.AddCommand(
		newExportCmd(client),
		newImportCmd(client),
		newResetCmd(client),
	)
	return rootCmd
}

func newExportCmd(client tcli.DaemonClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <sector-id> <name> <path>",
		Short: "Export a sector to a .tos-template file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return tcli.NewExitError(tcli.ExitUsageError, err)
			}
			path := args[2]
			data, err := client.ExportSector(types.SectorID(id))
			if err != nil {
				return tcli.NewExitError(tcli.ExitFailure, err)
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return tcli.NewExitError(tcli.ExitFailure, err)
			}
			return nil
		},
	}
	return cmd
}

func newImportCmd(client tcli.DaemonClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <path-to-.tos-template>",
		Short: "Import a sector from a .tos-template file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return tcli.NewExitError(tcli.ExitUsageError, err)
			}
			id, err := client.ImportSector(data)
			if err != nil {
				return tcli.NewExitError(tcli.ExitFailure, err)
			}
			cmd.Println(id.String())
			return nil
		},
	}
	return cmd
}

func newResetCmd(client tcli.DaemonClient) *cobra.Command {
	var saveState bool
	cmd := &cobra.Command{
		Use:   "reset <sector-id>",
		Short: "Reset a sector to a single fresh Command Hub",
		Long: "Reset a sector to a single fresh Command Hub.\n\n" +
			"With --save-state (the default) the pre-reset sector is kept for a short undo window. " +
			"Undo does not restart processes that the reset terminated.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return tcli.NewExitError(tcli.ExitUsageError, err)
			}
			if err := client.ResetSector(types.SectorID(id), saveState); err != nil {
				return tcli.NewExitError(tcli.ExitFailure, err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&saveState, "save-state", true, "keep an undo window over the pre-reset sector")
	return cmd
}
