package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.config.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// The websocket upgrade needs an unwrapped writer.
	if s.feed != nil {
		r.Handle("/api/progress/ws", s.feed)
	}

	r.Group(func(r chi.Router) {
		r.Use(gzip)

		if s.config.MediaDir != "" {
			r.Handle("/media/*", http.StripPrefix("/media", http.FileServer(http.Dir(s.config.MediaDir))))
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/categories", s.handleCategories)
			r.Get("/items", s.handleItems)
			r.Get("/items/popular", s.handlePopular)
			r.Get("/ab-tests", s.handleABTests)
			r.Get("/achievements", s.handleAchievements)
			r.Get("/reviews", s.handleReviews)
			r.Get("/faqs", s.handleFAQs)
			r.Get("/progress", s.handleProgress)
			r.Post("/private/verify", s.handleVerifyPrivate)
			r.Post("/private/submissions", s.handleSubmitPrivate)
			r.Post("/tag-requests", s.handleRequestTag)

			r.Group(func(r chi.Router) {
				r.Use(s.limiter.middleware)
				r.Post("/visits", s.handleTrackVisit)
				r.Post("/items/{id}/click", s.handleTrackClick)
			})

			r.Post("/auth/sign-in", s.handleSignIn)
			r.Post("/auth/sign-out", s.handleSignOut)
			r.With(s.requireSession).Get("/auth/session", s.handleSession)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireSession)
				s.adminRoutes(r)
			})
		})
	})

	return r
}

func (s *Server) adminRoutes(r chi.Router) {
	r.Get("/categories", s.handleAdminCategories)
	r.Post("/categories", s.handleCreateCategory)
	r.Put("/categories/{id}", s.handleUpdateCategory)
	r.Put("/categories/{id}/visibility", s.handleCategoryVisibility)
	r.Delete("/categories/{id}", s.handleDeleteCategory)

	r.Get("/tags", s.handleAdminTags)
	r.Post("/tags", s.handleCreateTag)
	r.Put("/tags/{id}", s.handleUpdateTag)
	r.Delete("/tags/{id}", s.handleDeleteTag)

	r.Get("/items", s.handleAdminItems)
	r.Post("/items", s.handleCreateItem)
	r.Put("/items/{id}", s.handleUpdateItem)
	r.Delete("/items/{id}", s.handleDeleteItem)
	r.Post("/items/{id}/star", s.handleToggleStar)
	r.Post("/items/{id}/presets/{presetID}", s.handleApplyPreset)

	r.Post("/ab-tests", s.handleCreateABTest)
	r.Put("/ab-tests/{id}", s.handleUpdateABTest)
	r.Delete("/ab-tests/{id}", s.handleDeleteABTest)

	r.Post("/achievements", s.handleCreateAchievement)
	r.Put("/achievements/{id}", s.handleUpdateAchievement)
	r.Delete("/achievements/{id}", s.handleDeleteAchievement)

	r.Post("/reviews", s.handleCreateReview)
	r.Put("/reviews/{id}", s.handleUpdateReview)
	r.Delete("/reviews/{id}", s.handleDeleteReview)

	r.Post("/faqs", s.handleCreateFAQ)
	r.Put("/faqs/{id}", s.handleUpdateFAQ)
	r.Delete("/faqs/{id}", s.handleDeleteFAQ)

	r.Get("/presets", s.handlePresets)
	r.Post("/presets", s.handleCreatePreset)
	r.Put("/presets/{id}", s.handleUpdatePreset)
	r.Delete("/presets/{id}", s.handleDeletePreset)

	r.Put("/progress", s.handleSetProgress)

	r.Get("/submissions", s.handleSubmissions)
	r.Delete("/submissions/{id}", s.handleDeleteSubmission)

	r.Get("/tag-requests", s.handleTagRequests)
	r.Post("/tag-requests/{id}/approve", s.handleApproveTagRequest)
	r.Delete("/tag-requests/{id}", s.handleDeleteTagRequest)

	r.Post("/reorder/{kind}", s.handleReorder)

	r.Get("/analytics/dashboard", s.handleDashboard)
	r.Get("/analytics/counts", s.handleCounts)
}

func gzip(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
