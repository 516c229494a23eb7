package sectorcontainer

import (
	"github.com/google/uuid"

	"github.com/tos-desktop/tos/pkg/types"
)

// parseContainerID maps a Docker engine container id (a 64-character hex
// string) onto our UUID id space by taking it as the name input to a
// version-5 UUID, so the same Docker id always yields the same
// types.ContainerID. The hash is one-way: DockerAdapter.resolve maps a
// ContainerID back to its Docker id through the adapter's own table.
func parseContainerID(dockerID string) (types.ContainerID, error) {
	return uuid.NewSHA1(containerNamespace, []byte(dockerID)), nil
}

var containerNamespace = uuid.MustParse("6f1f9f1a-9c0a-4c2f-8c9b-8c6a6a8a0a01")
