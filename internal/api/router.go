package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/stresssense/stresssense/internal/middleware"
	"github.com/stresssense/stresssense/internal/services"
)

// Server wires the HTTP surface to the service layer.
type Server struct {
	auth      *middleware.Authenticator
	authSvc   *services.AuthService
	surveys   *services.SurveyService
	responses *services.ResponseService
	analytics *services.AnalyticsService
	schedules *services.ScheduleService
	feedback  *services.FeedbackService

	allowedOrigins []string
}

type ServerConfig struct {
	Authenticator  *middleware.Authenticator
	Auth           *services.AuthService
	Surveys        *services.SurveyService
	Responses      *services.ResponseService
	Analytics      *services.AnalyticsService
	Schedules      *services.ScheduleService
	Feedback       *services.FeedbackService
	AllowedOrigins []string
}

func NewServer(cfg ServerConfig) *Server {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return &Server{
		auth:           cfg.Authenticator,
		authSvc:        cfg.Auth,
		surveys:        cfg.Surveys,
		responses:      cfg.Responses,
		analytics:      cfg.Analytics,
		schedules:      cfg.Schedules,
		feedback:       cfg.Feedback,
		allowedOrigins: origins,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Logger, chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SecureHeaders)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoStore)

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Respondent-facing routes are token scoped, never authenticated.
		r.Get("/public/surveys/{token}", s.handlePublicSurvey)
		r.Post("/public/responses", s.handleSubmitResponse)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.WithAuth, middleware.RequireAuth)

			r.Route("/surveys", func(r chi.Router) {
				r.Post("/", s.handleCreateSurvey)
				r.Get("/", s.handleListSurveys)
				r.Route("/{surveyID}", func(r chi.Router) {
					r.Get("/", s.handleGetSurvey)
					r.Post("/close", s.handleCloseSurvey)
					r.Post("/questions", s.handleAddQuestion)
					r.Get("/questions", s.handleListQuestions)
					r.Delete("/questions/{questionID}", s.handleDeleteQuestion)
					r.Post("/invites", s.handleInvite)
					r.Get("/summary", s.handleSummary)
					r.Get("/stats", s.handleStats)
					r.Get("/export", s.handleExport)
				})
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Post("/", s.handleCreateSchedule)
				r.Get("/", s.handleListSchedules)
				r.Patch("/{scheduleID}", s.handleSetScheduleActive)
				r.Delete("/{scheduleID}", s.handleDeleteSchedule)
			})
			r.With(middleware.RequireRole("admin")).Post("/schedules/run", s.handleRunSchedules)

			r.Route("/feedback", func(r chi.Router) {
				r.Post("/channels", s.handleCreateChannel)
				r.Get("/channels", s.handleListChannels)
				r.Post("/channels/{channelID}/messages", s.handlePostMessage)
				r.Get("/channels/{channelID}/messages", s.handleListMessages)
				r.Post("/channels/{channelID}/summary", s.handleSummarizeChannel)
			})
		})
	})

	return r
}
