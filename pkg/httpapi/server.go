// Package httpapi serves a read-only JSON API over the skill catalog.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/skillet-cli/skillet/pkg/index"
	"github.com/skillet-cli/skillet/pkg/logger"
	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/skills"
	"github.com/skillet-cli/skillet/pkg/stats"
)

// Server exposes the catalog over HTTP
type Server struct {
	store           *index.Store
	skillDiscovery  *skills.Discovery
	pluginDiscovery *plugins.Discovery
	httpServer      *http.Server
}

// NewServer creates an API server listening on addr
func NewServer(addr string, store *index.Store, skillDiscovery *skills.Discovery, pluginDiscovery *plugins.Discovery) *Server {
	s := &Server{
		store:           store,
		skillDiscovery:  skillDiscovery,
		pluginDiscovery: pluginDiscovery,
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/skills", s.handleSkills).Methods(http.MethodGet)
	router.HandleFunc("/api/skills/{name:.+}", s.handleSkillDetail).Methods(http.MethodGet)
	router.HandleFunc("/api/recommend", s.handleRecommend).Methods(http.MethodGet)
	router.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	router.Use(s.loggingMiddleware)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start(ctx context.Context) error {
	logger.G(ctx).WithField("addr", s.httpServer.Addr).Info("api server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "api server failed")
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the underlying router, used by tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.G(r.Context()).WithFields(map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debug("api request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var (
		entries []index.Entry
		err     error
	)
	if query == "" {
		entries, err = s.store.List(r.Context(), index.EntryTypeSkill)
	} else {
		var matched []index.Entry
		matched, err = s.store.Search(r.Context(), query)
		for _, entry := range matched {
			if entry.Type == index.EntryTypeSkill {
				entries = append(entries, entry)
			}
		}
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"skills": entries})
}

// skillDetail is the full representation of one skill
type skillDetail struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Version      string            `json:"version,omitempty"`
	Triggers     []string          `json:"triggers,omitempty"`
	AllowedTools []string          `json:"allowedTools,omitempty"`
	Source       string            `json:"source"`
	Directory    string            `json:"directory"`
	Content      string            `json:"content"`
	Resources    *skills.Resources `json:"resources,omitempty"`
}

func (s *Server) handleSkillDetail(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	skill, err := s.skillDiscovery.GetSkill(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	detail := skillDetail{
		Name:         skill.Name,
		Description:  skill.Description,
		Version:      skill.Version,
		Triggers:     skill.Triggers,
		AllowedTools: skill.AllowedTools,
		Source:       skill.Source,
		Directory:    skill.Directory,
		Content:      skill.ResolveBaseDir(),
	}
	if res, err := skill.Resources(); err == nil {
		detail.Resources = res
	}

	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	task := r.URL.Query().Get("task")
	if task == "" {
		writeError(w, http.StatusBadRequest, errors.New("task query parameter is required"))
		return
	}

	recommendations, err := s.store.Recommend(r.Context(), task)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recommendations})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	report, err := stats.Collect(r.Context(), s.skillDiscovery, s.pluginDiscovery)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
