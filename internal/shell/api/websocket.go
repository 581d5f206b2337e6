package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/artpar/stackwizard/internal/core/wizard"
	"github.com/artpar/stackwizard/internal/shell/simulator"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size accepted from the peer. Clients only close.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleSimulate streams a simulated deployment over a websocket. Each stage
// is sent as a "stage" message, followed by one "done" or "error" message and
// a close frame. Closing the socket cancels the run.
func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if h.simulator == nil {
		h.writeError(w, http.StatusServiceUnavailable, "simulator_disabled", "deployment simulator is not configured")
		return
	}
	view := h.session.View()
	if step := view.State.Step; step != wizard.StepReview {
		h.writeError(w, http.StatusConflict, "not_available", "simulation is available on the review step, not "+step.String())
		return
	}
	if view.Manifest == nil {
		h.writeError(w, http.StatusConflict, "not_available", "no manifest was generated")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go readUntilClosed(conn, cancel)

	send := func(msg SimulationMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}

	result, err := h.simulator.Run(ctx, view.Manifest.Text, func(ev simulator.Event) {
		if err := send(SimulationMessage{Type: "stage", Event: &ev}); err != nil {
			cancel()
		}
	})
	if err != nil {
		h.logger.Debug("simulation stopped", "error", err, "completed", result.Completed)
		_ = send(SimulationMessage{Type: "error", Result: &result, Error: err.Error()})
	} else {
		_ = send(SimulationMessage{Type: "done", Result: &result})
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readUntilClosed drains the connection and cancels once the peer goes away.
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
