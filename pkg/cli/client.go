package cli

import "github.com/tos-desktop/tos/pkg/types"

// DaemonClient is the narrow RPC surface tosctl needs against a running
// tosd over its local control socket.
type DaemonClient interface {
	ExportSector(sector types.SectorID) ([]byte, error)
	ImportSector(data []byte) (types.SectorID, error)
	ResetSector(sector types.SectorID, saveState bool) error
	ResetSystem(option types.SystemResetOption) error
}
