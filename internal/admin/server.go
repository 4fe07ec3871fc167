// Admin surface for streaming runs: status view and casualty injection.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"nrsim/internal/casualty"
	"nrsim/internal/sim"
)

// Server exposes the running simulator over HTTP.
type Server struct {
	Sim *sim.Simulator
	tpl *template.Template
	mux *http.ServeMux
}

//go:embed templates/index.html
var content embed.FS

// NewServer creates an admin server for the given simulator.
func NewServer(s *sim.Simulator) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	srv := &Server{Sim: s, tpl: tpl, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/inject", s.handleInject)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
}

// Start runs the server until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Status sim.Status
		Types  []casualty.Type
	}{
		Status: s.Sim.Status(),
		Types:  casualty.Types,
	}
	if err := s.tpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Sim.Status())
}

// handleInject force-starts a casualty: /inject?type=resin_overheat&severity=major&duration=20
func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	t := casualty.Type(r.URL.Query().Get("type"))
	if !casualty.KnownType(t) {
		http.Error(w, "unknown casualty type", http.StatusBadRequest)
		return
	}
	severity := casualty.Severity(r.URL.Query().Get("severity"))
	if severity == "" {
		severity = casualty.SeverityMinor
	}
	if !casualty.KnownSeverity(severity) {
		http.Error(w, "unknown severity", http.StatusBadRequest)
		return
	}
	duration, _ := strconv.Atoi(r.URL.Query().Get("duration"))

	accepted := s.Sim.InjectCasualty(t, severity, duration)
	w.Header().Set("Content-Type", "application/json")
	if !accepted {
		w.WriteHeader(http.StatusConflict)
	}
	json.NewEncoder(w).Encode(map[string]any{"accepted": accepted, "type": t})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
