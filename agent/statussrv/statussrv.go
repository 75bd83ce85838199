// statussrv exposes instance status labels and log sinks to the
// presentation layer: a JSON snapshot and a websocket live feed.
package statussrv

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SyntropyNet/nwswitch/agent/client"
	"github.com/SyntropyNet/nwswitch/internal/env"
	"github.com/SyntropyNet/nwswitch/internal/logger"
	"github.com/SyntropyNet/nwswitch/pkg/logbuf"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

const (
	pkgName = "StatusServer. "
	cmd     = "STATUS"

	writeTimeout = 5 * time.Second
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Instance is a monitored connection. client.Manager implements it.
type Instance interface {
	Name() string
	Status() client.Status
	Log() *logbuf.Buffer
}

type instanceStatus struct {
	Name       string   `json:"name"`
	Constraint string   `json:"constraint"`
	Label      string   `json:"label"`
	State      string   `json:"state"`
	Error      string   `json:"error,omitempty"`
	Lines      []string `json:"lines"`
}

type statusResponse struct {
	Instances []instanceStatus `json:"instances"`
}

type Server struct {
	port      uint16
	interval  time.Duration
	instances []Instance
	upgrader  websocket.Upgrader
	stop      chan struct{}
}

// New creates status server. interval is the websocket feed poll period.
func New(port uint16, interval time.Duration, instances ...Instance) *Server {
	if interval <= 0 {
		interval = env.DefaultEchoInterval
	}
	return &Server{
		port:      port,
		interval:  interval,
		instances: instances,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		stop: make(chan struct{}),
	}
}

func (s *Server) Name() string {
	return cmd
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/status", s.handleStatus)
	r.Get("/ws", s.handleFeed)
	return r
}

func (s *Server) Run(ctx context.Context) error {
	logger.Debug().Println(pkgName, "status server starting on port", s.port)
	srv := http.Server{
		Addr:        fmt.Sprintf(":%d", s.port),
		Handler:     s.Handler(),
		ReadTimeout: 5 * time.Second,
	}

	go func() {
		err := srv.ListenAndServe()
		if err != http.ErrServerClosed {
			logger.Error().Println(pkgName, err)
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Debug().Println(pkgName, "stopping", cmd)
		// hijacked websocket connections are not closed by the server
		close(s.stop)
		srv.Close()
	}()

	return nil
}

func lines(entries []logbuf.Entry) []string {
	res := make([]string, 0, len(entries))
	for _, e := range entries {
		res = append(res, e.String())
	}
	return res
}

func statusOf(inst Instance, entries []logbuf.Entry) instanceStatus {
	st := inst.Status()
	return instanceStatus{
		Name:       st.Name,
		Constraint: st.Constraint,
		Label:      st.Label,
		State:      st.State.String(),
		Error:      st.LastError,
		Lines:      lines(entries),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Instances: make([]instanceStatus, 0, len(s.instances))}
	for _, inst := range s.instances {
		resp.Instances = append(resp.Instances, statusOf(inst, inst.Log().Snapshot(env.LogScrollLines)))
	}

	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error().Println(pkgName, "status encode", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
