package statussrv

import (
	"net/http"
	"time"

	"github.com/SyntropyNet/nwswitch/internal/env"
	"github.com/SyntropyNet/nwswitch/internal/logger"
	"github.com/SyntropyNet/nwswitch/pkg/logbuf"
	"github.com/gorilla/websocket"
)

type feedCursor struct {
	seq   uint64
	label string
	state string
}

// handleFeed sends the last lines of every instance first,
// then only new log lines and label or state changes
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warning().Println(pkgName, "websocket upgrade", err)
		return
	}
	defer ws.Close()

	// Client messages are not expected. Reading detects disconnect.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	cursors := make([]feedCursor, len(s.instances))
	first := true

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		updates := statusResponse{}
		for i, inst := range s.instances {
			buf := inst.Log()
			var entries []logbuf.Entry
			if first {
				entries = buf.Snapshot(env.LogScrollLines)
			} else {
				entries = buf.Since(cursors[i].seq)
			}
			if len(entries) > 0 {
				cursors[i].seq = entries[len(entries)-1].Seq
			}

			st := statusOf(inst, entries)
			if first || len(entries) > 0 || st.Label != cursors[i].label || st.State != cursors[i].state {
				cursors[i].label = st.Label
				cursors[i].state = st.State
				updates.Instances = append(updates.Instances, st)
			}
		}
		first = false

		if len(updates.Instances) > 0 {
			data, err := json.Marshal(updates)
			if err != nil {
				logger.Error().Println(pkgName, "feed encode", err)
				return
			}
			ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debug().Println(pkgName, "feed write", err)
				return
			}
		}

		select {
		case <-gone:
			return
		case <-s.stop:
			ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeTimeout))
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
