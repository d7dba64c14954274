package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"agent-motion-planner/internal/experiment"
)

// streamMessage is one frame of the /ws/compare stream.
type streamMessage struct {
	Type    string        `json:"type"` // "result", "error" or "done"
	Result  *PlanResponse `json:"result,omitempty"`
	Message string        `json:"message,omitempty"`
}

// compareStreamHandler reads one PlanRequest and streams each planner's result as
// soon as it finishes, followed by a "done" frame.
func (s *Server) compareStreamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	_, payload, err := conn.ReadMessage()
	if err != nil {
		return
	}

	var req PlanRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		s.writeFrame(conn, streamMessage{Type: "error", Message: "Invalid request body"})
		return
	}

	ks, err := kinds(req.Planners)
	if err != nil {
		s.writeFrame(conn, streamMessage{Type: "error", Message: err.Error()})
		return
	}
	problem, err := s.problem(&req)
	if err != nil {
		s.writeFrame(conn, streamMessage{Type: "error", Message: err.Error()})
		return
	}

	s.logger.Printf("📡 Streaming comparison of %d planners\n", len(ks))

	opts := req.options(s.opts)
	opts.Logger = s.logger
	_, err = experiment.Compare(r.Context(), problem, opts, ks, func(o experiment.Outcome) {
		s.storeTree(o.Result)
		resp := newPlanResponse(o.Result, o.Err)
		s.writeFrame(conn, streamMessage{Type: "result", Result: &resp})
	})
	if err != nil {
		s.writeFrame(conn, streamMessage{Type: "error", Message: err.Error()})
		return
	}

	s.writeFrame(conn, streamMessage{Type: "done"})
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) writeFrame(conn *websocket.Conn, msg streamMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Printf("failed to marshal stream frame: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Printf("failed to write stream frame: %v", err)
	}
}
