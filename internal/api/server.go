package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/resortinfo/internal/conversation"
	"github.com/MikeSquared-Agency/resortinfo/internal/query"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// ConversationLogger records conversations submitted to /api/log-conversation.
type ConversationLogger interface {
	LogConversation(ctx context.Context, rec conversation.Record) conversation.Result
}

// ConversationHistory reads back mirrored conversations.
type ConversationHistory interface {
	RecentConversations(ctx context.Context, limit int) ([]conversation.Entry, error)
	ConversationByID(ctx context.Context, id uuid.UUID) (*conversation.Entry, error)
}

type Server struct {
	router  *chi.Mux
	port    int
	queries *query.Service
	convos  ConversationLogger
	history ConversationHistory
	logger  *slog.Logger
	http    *http.Server
}

func NewServer(port int, queries *query.Service, convos ConversationLogger, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	s := &Server{
		router:  router,
		port:    port,
		queries: queries,
		convos:  convos,
		logger:  logger,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	router.Get("/", s.root)
	router.Get("/health", s.health)

	router.Route("/api", func(r chi.Router) {
		r.Post("/filter-information", s.filterInformation)
		r.Post("/get-chunk", s.getChunk)
		r.Get("/sources/{primary_name}", s.listSources)
		r.Get("/schema/{primary_name}/{source}", s.getSchema)
		r.Post("/log-conversation", s.logConversation)
		r.Get("/conversations", s.recentConversations)
		r.Get("/conversations/{id}", s.conversationByID)
	})

	return s
}

// SetHistory enables the conversation history endpoints.
func (s *Server) SetHistory(h ConversationHistory) {
	s.history = h
}

// Mount attaches an extra handler under pattern, e.g. the MCP endpoint.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

func (s *Server) Start() error {
	slog.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "online",
		"message": "Resort Information API is running",
		"endpoints": []string{
			"/api/filter-information",
			"/api/get-chunk",
			"/api/sources/:primary_name",
			"/api/schema/:primary_name/:source",
			"/api/log-conversation",
		},
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeQueryError maps query errors onto 400/404/500.
func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, query.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, query.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
