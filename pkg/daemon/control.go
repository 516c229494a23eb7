// Package daemon wires the session store and its collaborating
// components into one running tosd process: the control socket server
// tosctl talks to, and the cooperative tick loop driving every
// component's per-cycle update.
package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/tos-desktop/tos/pkg/types"
)

type controlRequest struct {
	Op        string                   `json:"op"`
	SectorID  types.SectorID           `json:"sector_id,omitempty"`
	Data      []byte                   `json:"data,omitempty"`
	SaveState bool                     `json:"save_state,omitempty"`
	Option    types.SystemResetOption  `json:"option,omitempty"`
}

type controlResponse struct {
	OK       bool           `json:"ok"`
	Error    string         `json:"error,omitempty"`
	Data     []byte         `json:"data,omitempty"`
	SectorID types.SectorID `json:"sector_id,omitempty"`
}

// ControlServer accepts tosctl's newline-framed JSON requests over a
// Unix domain socket.
type ControlServer struct {
	path string
	d    *Daemon
	wg   conc.WaitGroup
}

// NewControlServer binds a control server to a socket path.
func NewControlServer(path string, d *Daemon) *ControlServer {
	return &ControlServer{path: path, d: d}
}

// Serve listens until ctx is cancelled.
func (s *ControlServer) Serve(ctx context.Context) error {
	_ = os.Remove(s.path)
	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				if rec := s.wg.WaitAndRecover(); rec != nil {
					log.Error().Interface("recovered", rec).Msg("a control connection handler panicked")
				}
				return nil
			default:
				log.Warn().Err(err).Msg("control socket accept failed")
				continue
			}
		}
		s.wg.Go(func() { s.handle(conn) })
	}
}

func (s *ControlServer) handle(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		var req controlRequest
		if err := json.Unmarshal(line, &req); err != nil {
			writeResponse(conn, controlResponse{Error: err.Error()})
			continue
		}
		writeResponse(conn, s.dispatch(req))
	}
}

func (s *ControlServer) dispatch(req controlRequest) controlResponse {
	switch req.Op {
	case "sector.export":
		data, err := s.d.ExportSector(req.SectorID)
		if err != nil {
			return controlResponse{Error: err.Error()}
		}
		return controlResponse{OK: true, Data: data}
	case "sector.import":
		id, err := s.d.ImportSector(req.Data)
		if err != nil {
			return controlResponse{Error: err.Error()}
		}
		return controlResponse{OK: true, SectorID: id}
	case "sector.reset":
		if err := s.d.ResetMachine.InitiateSectorReset(req.SectorID, req.SaveState); err != nil {
			return controlResponse{Error: err.Error()}
		}
		return controlResponse{OK: true}
	case "system.reset":
		if err := s.systemReset(req.Option); err != nil {
			return controlResponse{Error: err.Error()}
		}
		return controlResponse{OK: true}
	default:
		return controlResponse{Error: "unknown op: " + req.Op}
	}
}

// systemReset drives the reset state machine straight through to
// execution: a CLI invocation already IS the user's confirmation, so it
// supplies an instantaneous hold gesture rather than waiting on tactile
// input, then blocks out the configured countdown before executing.
func (s *ControlServer) systemReset(option types.SystemResetOption) error {
	if err := s.d.ResetMachine.OpenSystemDialog(); err != nil {
		return err
	}
	method := types.TactileMethod{Kind: types.MethodHold, HoldMillis: 1}
	if err := s.d.ResetMachine.SelectSystemOption(option, method); err != nil {
		return err
	}
	countdown := time.Duration(s.d.Config.Security.CountdownSeconds) * time.Second
	if err := s.d.ResetMachine.UpdateSystemConfirmationProgress(method.CompletionThreshold(), countdown); err != nil {
		return err
	}
	time.Sleep(countdown)
	return s.d.ResetMachine.ExecuteSystemReset()
}

func writeResponse(conn net.Conn, resp controlResponse) {
	if resp.Error != "" {
		resp.OK = false
	} else {
		resp.OK = true
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = conn.Write(data)
}
