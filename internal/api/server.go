package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"

	"github.com/portfolio-site/backend/internal/engine"
	"github.com/portfolio-site/backend/internal/politeness"
	"github.com/portfolio-site/backend/internal/portfolio"
)

// AskPath is the resume Q&A endpoint.
const AskPath = "/api/ask-resume"

const defaultMaxBodyBytes = 16 << 10

// MsgThrottled is served with 429 when a client exceeds its request budget.
const MsgThrottled = "You're asking faster than I can think -- give me a moment and try again."

type Server struct {
	Engine     *engine.Engine
	Logger     *logrus.Entry
	Router     *http.ServeMux
	Politeness *politeness.PolitenessManager
	Robots     *politeness.RobotsPolicy
	Projects   []portfolio.Project

	mu         sync.Mutex
	httpServer *http.Server
}

// NewServer builds the HTTP API. pm may be nil to disable throttling and
// robots may be nil to serve the default policy.
func NewServer(eng *engine.Engine, logger *logrus.Entry, pm *politeness.PolitenessManager, robots *politeness.RobotsPolicy, projects []portfolio.Project) *Server {
	if logger == nil {
		logger = logrus.WithField("component", "api")
	}
	if robots == nil {
		robots, _ = politeness.NewRobotsPolicy("")
	}
	if projects == nil {
		projects = []portfolio.Project{}
	}
	s := &Server{
		Engine:     eng,
		Logger:     logger,
		Router:     http.NewServeMux(),
		Politeness: pm,
		Robots:     robots,
		Projects:   projects,
	}
	s.routes()

	if s.Robots.Allows(AskPath, "*") {
		s.Logger.Warnf("robots.txt allows crawlers on %s", AskPath)
	}
	return s
}

func (s *Server) routes() {
	s.Router.HandleFunc(AskPath, s.throttle(s.handleAsk))
	s.Router.HandleFunc("/api/projects", s.handleProjects)
	s.Router.HandleFunc("/api/v1/status", s.handleStatus)
	s.Router.HandleFunc("/robots.txt", s.handleRobots)
}

// Handler returns the router wrapped in request id and access logging.
func (s *Server) Handler() http.Handler {
	return s.requestID(s.accessLog(s.Router))
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown. Concurrent connections
// are capped by the server config.
func (s *Server) Serve(ln net.Listener) error {
	cfg := s.Engine.Config.Server
	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.Logger.WithField("max_connections", cfg.MaxConnections).Infof("Starting API Server on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.Logger.Info("Shutting down API Server")
	return srv.Shutdown(ctx)
}

// Responses
type AskResponse struct {
	Answer string `json:"answer"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProjectsResponse struct {
	Projects []portfolio.Project `json:"projects"`
}

type StatusResponse struct {
	CorpusChunks int                    `json:"corpus_chunks"`
	CacheEntries int                    `json:"cache_entries"`
	Provider     string                 `json:"provider"`
	Configured   bool                   `json:"configured"`
	Questions    int64                  `json:"questions"`
	CacheHits    int64                  `json:"cache_hits"`
	SpecialCase  int64                  `json:"special_case"`
	Generated    int64                  `json:"generated"`
	Fallbacks    int64                  `json:"fallbacks"`
	Throttle     *politeness.Statistics `json:"throttle,omitempty"`
	Uptime       string                 `json:"uptime"`
}

// Handlers

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := s.Engine.Config.Server.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	query, err := decodeQuery(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		s.Logger.WithError(err).Debug("Unparseable ask-resume body")
		jsonResponse(w, http.StatusBadRequest, AskResponse{Answer: engine.MsgParseError})
		return
	}

	res := s.Engine.Ask(r.Context(), query)
	jsonResponse(w, res.Status, AskResponse{Answer: res.Answer})
}

var errTrailingData = errors.New("unexpected data after request body")

// decodeQuery reads {"query": "..."}. A missing or null query is the empty
// string; a query of any other JSON type is an error.
func decodeQuery(body io.Reader) (string, error) {
	var req struct {
		Query json.RawMessage `json:"query"`
	}
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		return "", err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", errTrailingData
	}
	if len(req.Query) == 0 || string(req.Query) == "null" {
		return "", nil
	}
	var query string
	if err := json.Unmarshal(req.Query, &query); err != nil {
		return "", fmt.Errorf("query must be a string: %w", err)
	}
	return query, nil
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonResponse(w, http.StatusOK, ProjectsResponse{Projects: s.Projects})
	case http.MethodPost:
		// Submissions are acknowledged, not stored.
		var body interface{}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, defaultMaxBodyBytes)).Decode(&body); err != nil {
			jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: "Something went wrong"})
			return
		}
		jsonResponse(w, http.StatusOK, MessageResponse{Message: "Success!"})
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	eng := s.Engine
	stats := &eng.Stats

	resp := StatusResponse{
		CorpusChunks: eng.Corpus.Len(),
		CacheEntries: eng.Cache.Len(),
		Provider:     eng.Config.LLM.Provider,
		Configured:   eng.Configured(),
		Questions:    stats.Questions.Load(),
		CacheHits:    stats.CacheHits.Load(),
		SpecialCase:  stats.SpecialCase.Load(),
		Generated:    stats.Generated.Load(),
		Fallbacks:    stats.Fallbacks.Load(),
		Uptime:       time.Since(stats.StartTime).Round(time.Second).String(),
	}
	if eng.LLM != nil {
		resp.Provider = eng.LLM.Name()
	}
	if s.Politeness != nil {
		throttle := s.Politeness.GetStatistics()
		resp.Throttle = &throttle
	}

	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, s.Robots.Text())
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
