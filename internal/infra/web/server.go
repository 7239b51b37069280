package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"video-subtitle-translator/internal/domain"
	"video-subtitle-translator/internal/domain/model"
	"video-subtitle-translator/internal/usecase"
)

// Server exposes the task poll surface plus health and metrics endpoints.
// Task status and errorMessage are the sole failure-reporting channel of the
// pipeline, so this polling API is the only read path callers need.
type Server struct {
	taskUC     usecase.TaskUseCase
	pipelineUC usecase.PipelineUseCase
	srv        *http.Server
	log        *zerolog.Logger
}

func NewServer(port int, taskUC usecase.TaskUseCase, pipelineUC usecase.PipelineUseCase, logger *zerolog.Logger) *Server {
	webLog := logger.With().Str("component", "WebServer").Logger()
	s := &Server{taskUC: taskUC, pipelineUC: pipelineUC, log: &webLog}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tasks", s.handleCreateTask)
		r.Get("/tasks/{id}", s.handleGetTask)
		r.Post("/tasks/{id}/cancel", s.handleCancelTask)
		r.Get("/users/{id}/tasks", s.handleListUserTasks)
	})

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

type taskResponse struct {
	ID                    string  `json:"id"`
	UserID                string  `json:"userId"`
	Status                string  `json:"status"`
	TranslatedSrtFilePath string  `json:"translatedSrtFilePath,omitempty"`
	BurnedVideoFilePath   string  `json:"burnedVideoFilePath,omitempty"`
	Summary               string  `json:"summary,omitempty"`
	ErrorMessage          string  `json:"errorMessage,omitempty"`
	SourceLanguage        string  `json:"sourceLanguage,omitempty"`
	LanguageConfidence    float64 `json:"languageConfidence,omitempty"`
	CreatedAt             string  `json:"createdAt"`
	UpdatedAt             string  `json:"updatedAt"`
}

func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:                    t.ID,
		UserID:                t.UserID,
		Status:                string(t.Status),
		TranslatedSrtFilePath: t.TranslatedSrtFilePath,
		BurnedVideoFilePath:   t.BurnedVideoFilePath,
		Summary:               t.Summary,
		ErrorMessage:          t.ErrorMessage,
		SourceLanguage:        t.SourceLanguage,
		LanguageConfidence:    t.LanguageConfidence,
		CreatedAt:             t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             t.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        string `json:"userId"`
		VideoFilePath string `json:"videoFilePath"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	task, err := s.taskUC.Create(r.Context(), req.UserID, req.VideoFilePath)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.pipelineUC.Dispatch(r.Context(), task.ID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, toTaskResponse(task))
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskUC.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	if err := s.pipelineUC.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUserTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.taskUC.FindByUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidArgument):
		s.writeError(w, http.StatusBadRequest, "invalid argument")
	case errors.Is(err, domain.ErrTaskNotRunnable):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
