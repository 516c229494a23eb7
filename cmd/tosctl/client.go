package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"

	"github.com/tos-desktop/tos/pkg/types"
)

// socketClient implements pkg/cli.DaemonClient over a Unix domain socket
// using newline-framed JSON requests/responses, the same framing
// convention as the collaboration sync packet stream.
type socketClient struct {
	conn net.Conn
	rw   *bufio.ReadWriter
}

func newSocketClient(path string) (*socketClient, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("connect control socket %s: %w", path, err)
	}
	return &socketClient{
		conn: conn,
		rw:   bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)),
	}, nil
}

func (c *socketClient) Close() error { return c.conn.Close() }

type controlRequest struct {
	Op        string          `json:"op"`
	SectorID  types.SectorID  `json:"sector_id,omitempty"`
	Data      []byte          `json:"data,omitempty"`
	SaveState bool            `json:"save_state,omitempty"`
	Option    types.SystemResetOption `json:"option,omitempty"`
}

type controlResponse struct {
	OK       bool           `json:"ok"`
	Error    string         `json:"error,omitempty"`
	Data     []byte         `json:"data,omitempty"`
	SectorID types.SectorID `json:"sector_id,omitempty"`
}

func (c *socketClient) roundTrip(req controlRequest) (controlResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return controlResponse{}, err
	}
	if _, err := c.rw.Write(append(payload, '\n')); err != nil {
		return controlResponse{}, err
	}
	if err := c.rw.Flush(); err != nil {
		return controlResponse{}, err
	}
	line, err := c.rw.ReadBytes('\n')
	if err != nil {
		return controlResponse{}, err
	}
	var resp controlResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return controlResponse{}, err
	}
	if !resp.OK {
		return resp, fmt.Errorf("%s", resp.Error)
	}
	return resp, nil
}

func (c *socketClient) ExportSector(sector types.SectorID) ([]byte, error) {
	resp, err := c.roundTrip(controlRequest{Op: "sector.export", SectorID: sector})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *socketClient) ImportSector(data []byte) (types.SectorID, error) {
	resp, err := c.roundTrip(controlRequest{Op: "sector.import", Data: data})
	if err != nil {
		return types.SectorID{}, err
	}
	return resp.SectorID, nil
}

func (c *socketClient) ResetSector(sector types.SectorID, saveState bool) error {
	_, err := c.roundTrip(controlRequest{Op: "sector.reset", SectorID: sector, SaveState: saveState})
	return err
}

func (c *socketClient) ResetSystem(option types.SystemResetOption) error {
	_, err := c.roundTrip(controlRequest{Op: "system.reset", Option: option})
	return err
}
