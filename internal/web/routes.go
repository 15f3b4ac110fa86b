package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/facegate/internal/web/handlers"
	"github.com/kozaktomas/facegate/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	uploadHandler := handlers.NewUploadHandler(s.deps.Runner, s.config.Storage.UploadsDir)
	recognizeHandler := handlers.NewRecognizeHandler(
		s.deps.Matcher,
		s.deps.Aggregator,
		s.config.Storage.ProductionDir,
		s.config.Pipeline.Recognition.ResizeMaxDim,
	)
	imagesHandler := handlers.NewImagesHandler(s.config.Storage.ProductionDir, s.deps.Names)
	namesHandler := handlers.NewNamesHandler(s.deps.Names)
	syncHandler := handlers.NewSyncHandler(s.jobManager, s.deps.Reconciler)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// All API routes require a known client token.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireClient(s.config.Clients))

			// Admission
			r.Post("/images", uploadHandler.Upload)

			// Recognition
			r.Post("/recognize", recognizeHandler.Recognize)

			// Corpus management
			r.Get("/images", imagesHandler.List)
			r.Delete("/images/{filename}", imagesHandler.Delete)
			r.Put("/images/{filename}", imagesHandler.Rename)

			// Name mappings
			r.Get("/names", namesHandler.List)

			// Sync (long-running operations)
			r.Post("/sync", syncHandler.Start)
			r.Get("/sync/{jobId}", syncHandler.Status)
		})
	})
}
