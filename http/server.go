package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/tasmanium/reportview"
	"github.com/tasmanium/reportview/html"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Server serves a report directory together with a JSON view of the report
// and server-side rendered snapshots.
type Server struct {
	router *mux.Router
	log    logrus.FieldLogger

	dir      string
	document string
	raw      []byte
	report   *reportview.Report
}

// NewServer creates a server for the report directory dir. document is the
// report file name inside dir and raw its content.
func NewServer(dir, document string, raw []byte, log logrus.FieldLogger) (*Server, error) {
	report, err := html.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	s := &Server{
		router:   mux.NewRouter(),
		log:      log,
		dir:      dir,
		document: document,
		raw:      raw,
		report:   report,
	}
	s.setupRoutes()
	return s, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Infof("Serving %s at http://%s/%s", s.dir, ln.Addr(), s.document)
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scenarios", s.handleListScenarios).Methods(http.MethodGet)
	api.HandleFunc("/scenarios/{id}", s.handleGetScenario).Methods(http.MethodGet)

	s.router.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)

	// Attachments and the report itself.
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.dir)))
}

type repeatJSON struct {
	ID        string `json:"id"`
	Status    string `json:"status,omitempty"`
	LogFolder string `json:"logFolder,omitempty"`
}

type attachmentJSON struct {
	Filename    string `json:"filename"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
}

type stepJSON struct {
	ID          string           `json:"id"`
	Text        string           `json:"text"`
	Status      string           `json:"status,omitempty"`
	Attachments []attachmentJSON `json:"attachments,omitempty"`
}

type scenarioJSON struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Feature   string       `json:"feature,omitempty"`
	Status    string       `json:"status,omitempty"`
	Link      string       `json:"link"`
	LogFolder string       `json:"logFolder,omitempty"`
	Repeats   []repeatJSON `json:"repeats,omitempty"`
	Steps     []stepJSON   `json:"steps,omitempty"`
}

func (s *Server) scenarioJSON(sc *reportview.Scenario, withSteps bool) scenarioJSON {
	out := scenarioJSON{
		ID:        sc.ID,
		Name:      sc.Name,
		Feature:   sc.Feature,
		Status:    string(sc.Status),
		Link:      s.document + reportview.FormatFragment(sc.ID),
		LogFolder: sc.LogFolder,
	}
	if sc.Repeats != nil {
		for _, r := range sc.Repeats.Attempts {
			out.Repeats = append(out.Repeats, repeatJSON{ID: r.ID, Status: string(r.Status), LogFolder: r.LogFolder})
		}
	}
	if !withSteps {
		return out
	}
	for _, st := range sc.Steps {
		step := stepJSON{ID: st.ID, Text: st.Text, Status: string(st.Status)}
		for _, a := range st.Attachments {
			step.Attachments = append(step.Attachments, attachmentJSON{
				Filename:    a.Filename,
				Type:        string(a.ContentType),
				Description: a.Description,
				Path:        a.Path(),
			})
		}
		out.Steps = append(out.Steps, step)
	}
	return out
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	out := make([]scenarioJSON, 0, len(s.report.Scenarios))
	for _, sc := range s.report.Scenarios {
		out = append(out, s.scenarioJSON(sc, false))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"title":     s.report.Title,
		"scenarios": out,
	})
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sc, ok := s.report.Scenario(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, &reportview.UnmatchedError{What: "scenario", ID: id})
		return
	}
	s.writeJSON(w, http.StatusOK, s.scenarioJSON(sc, true))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := parseSnapshot(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	doc, err := html.NewParser().ParseDocument(bytes.NewReader(s.raw))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	state, err := snap.State(doc.Report())
	if err != nil {
		s.log.WithError(err).Warn("snapshot partially applied")
	}
	doc.Reconcile(state)

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// parseSnapshot reads ?view=features&hide=passed,skipped&scenario=<id>.
func parseSnapshot(r *http.Request) (reportview.Snapshot, error) {
	q := r.URL.Query()
	var snap reportview.Snapshot

	if v := q.Get("view"); v != "" {
		mode, err := reportview.ParseViewMode(v)
		if err != nil {
			return snap, err
		}
		snap.Mode = mode
	}
	for _, h := range q["hide"] {
		for _, name := range strings.Split(h, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			st, err := reportview.ParseStatus(name)
			if err != nil {
				return snap, err
			}
			snap.Hidden = append(snap.Hidden, st)
		}
	}
	snap.Fragment = q.Get("scenario")
	return snap, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).Error("encode response")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.code,
			"duration": time.Since(start),
		}).Debug("request")
	})
}
