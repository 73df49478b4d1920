// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

// Package web serves the single-page front-end.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/present"
	"github.com/multiagent-studio/studio/pkg/session"
	"github.com/multiagent-studio/studio/pkg/telemetry"
)

const (
	// DefaultAddr is where the page is served when no address is configured.
	DefaultAddr = ":8501"
	cookieName  = "studio_session"

	appTitle    = "MultiAgent Studio"
	appTagline  = "Multi-role AI assistant powered by CrewAI & Google Gemini"
	placeholder = "Example: Explain artificial intelligence in simple terms with 3 real-world examples, " +
		"or ask the Python Expert to write a function, or ask the Email Writer to draft a message."
)

// DefaultModels are offered when none are configured.
var DefaultModels = []string{"gemini/gemini-2.5-flash", "gemini/gemini-2.5-pro"}

//go:embed templates/*.html static/*
var webFS embed.FS

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).ParseFS(webFS, "templates/*.html"))

// Config holds the server dependencies. Catalog, credential and models are
// read-only after construction.
type Config struct {
	Executor    session.Executor
	Store       *session.Store
	Catalog     *core.Catalog
	Credential  core.Credential
	Models      []string
	Temperature float64
	Logger      *slog.Logger
}

// Server is the web front-end.
type Server struct {
	exec        session.Executor
	store       *session.Store
	catalog     *core.Catalog
	credential  core.Credential
	models      []string
	temperature float64
	logger      *slog.Logger
}

// NewServer validates cfg and builds a Server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Executor == nil {
		return nil, errors.New("web: executor is required")
	}
	s := &Server{
		exec:        cfg.Executor,
		store:       cfg.Store,
		catalog:     cfg.Catalog,
		credential:  cfg.Credential,
		models:      cfg.Models,
		temperature: core.ClampTemperature(cfg.Temperature),
		logger:      cfg.Logger,
	}
	if s.store == nil {
		store, err := session.NewStore(session.DefaultMaxSessions)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	if s.catalog == nil {
		s.catalog = core.NewCatalog()
	}
	if len(s.models) == 0 {
		s.models = DefaultModels
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	staticFS, err := fs.Sub(webFS, "static")
	if err == nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /run", s.handleRun)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	return mux
}

// ListenAndServe serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if strings.TrimSpace(addr) == "" {
		addr = DefaultAddr
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	displayAddr := addr
	if strings.HasPrefix(displayAddr, ":") {
		displayAddr = "localhost" + displayAddr
	}
	s.logger.Info("web ui listening", "url", fmt.Sprintf("http://%s", displayAddr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type pageData struct {
	Title           string
	Tagline         string
	CredentialReady bool
	CredentialEnv   string
	Roles           []core.RoleDefinition
	SelectedRole    string
	CustomName      string
	CustomBackstory string
	Models          []string
	SelectedModel   string
	Temperature     string
	Task            string
	Placeholder     string
	Notice          string
	Status          string
	StatusOK        bool
	Output          template.HTML
}

func (s *Server) basePage() pageData {
	return pageData{
		Title:           appTitle,
		Tagline:         appTagline,
		CredentialReady: s.credential.Ready(),
		CredentialEnv:   s.credential.EnvVar,
		Roles:           s.catalog.Roles(),
		SelectedRole:    s.catalog.Default().ID,
		Models:          s.models,
		SelectedModel:   s.models[0],
		Temperature:     formatTemperature(s.temperature),
		Placeholder:     placeholder,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handleIndex is a fresh page load: a new session with an empty slot.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	id := s.store.Open()
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	s.render(w, http.StatusOK, s.basePage())
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := s.sessionID(w, r)
	page := s.basePage()
	page.Task = r.PostFormValue("task")
	page.CustomName = r.PostFormValue("custom_name")
	page.CustomBackstory = r.PostFormValue("custom_backstory")

	role, notice := s.resolveRole(r.PostFormValue("role"), page.CustomName, page.CustomBackstory)
	page.SelectedRole = role.ID
	page.Notice = notice

	model := s.resolveModel(r.PostFormValue("model"))
	page.SelectedModel = model
	temp := s.parseTemperature(r.PostFormValue("temperature"))
	page.Temperature = formatTemperature(temp)

	if !s.credential.Ready() {
		page.Notice = fmt.Sprintf("%s is not set. Please configure your API key and refresh the page.", s.credential.EnvVar)
		s.render(w, http.StatusOK, s.withSlot(page, id))
		return
	}

	req, err := core.BuildRequest(role, page.Task,
		core.WithModel(model),
		core.WithTemperature(temp),
		core.WithCredential(s.credential.Value),
	)
	if errors.Is(err, core.ErrEmptyTask) {
		page.Notice = "Please enter a task description before running the agent."
		s.render(w, http.StatusOK, s.withSlot(page, id))
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, span := otel.Tracer("studio/web").Start(r.Context(), "web.run",
		trace.WithAttributes(telemetry.SessionAttributes(id)...))
	outcome := s.exec.Execute(ctx, req)
	span.End()
	s.store.Put(id, session.Slot{Outcome: outcome, RoleName: req.RoleName, Task: req.Task})
	s.logger.Debug("web run finished", "session", id, "role", req.RoleName, "outcome", string(outcome.Kind))

	if outcome.OK() {
		page.Status, page.StatusOK = "Agent completed the task.", true
	} else {
		page.Status = "The agent failed to run."
	}
	page.Output = present.HTML(outcome)
	s.render(w, http.StatusOK, page)
}

// withSlot shows the previous outcome of the session, if any.
func (s *Server) withSlot(page pageData, id string) pageData {
	if slot, ok := s.store.Get(id); ok {
		page.Output = present.HTML(slot.Outcome)
	}
	return page
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		if _, ok := s.store.Get(c.Value); ok {
			return c.Value
		}
	}
	id := s.store.Open()
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return id
}

func (s *Server) resolveRole(id, customName, customBackstory string) (core.RoleDefinition, string) {
	if strings.EqualFold(strings.TrimSpace(id), core.RoleCustom) {
		return s.catalog.Custom(customName, customBackstory), ""
	}
	role, fellBack := s.catalog.Resolve(id)
	if fellBack {
		return role, fmt.Sprintf("Unknown role. Using default '%s'.", role.Name)
	}
	return role, ""
}

func (s *Server) resolveModel(model string) string {
	model = strings.TrimSpace(model)
	for _, m := range s.models {
		if m == model {
			return m
		}
	}
	return s.models[0]
}

func (s *Server) parseTemperature(raw string) float64 {
	t, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return s.temperature
	}
	return core.ClampTemperature(t)
}

func (s *Server) render(w http.ResponseWriter, status int, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.ExecuteTemplate(w, "index.html", page); err != nil {
		s.logger.Error("render page", "error", err)
	}
}

func formatTemperature(t float64) string {
	return strconv.FormatFloat(t, 'f', 1, 64)
}
