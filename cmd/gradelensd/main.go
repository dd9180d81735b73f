package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/grade-lens/gradelens/internal/api/http"
	"github.com/grade-lens/gradelens/internal/config"
	"github.com/grade-lens/gradelens/internal/db"
	"github.com/grade-lens/gradelens/internal/gradeconfig"
	"github.com/grade-lens/gradelens/internal/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		slog.Error("db open failed", "error", err)
		os.Exit(1)
	}
	defer dbh.Close()

	svc := gradeconfig.NewService(gradeconfig.NewSQLStore(dbh, cfg.DBDriver))

	tmpls, err := templates.Builtin()
	if err != nil {
		slog.Error("builtin templates", "error", err)
		os.Exit(1)
	}
	if cfg.TemplateDir != "" {
		user, err := templates.LoadDir(cfg.TemplateDir)
		if err != nil {
			slog.Error("template dir", "dir", cfg.TemplateDir, "error", err)
			os.Exit(1)
		}
		tmpls = templates.Merge(tmpls, user)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/templates", api.ListTemplatesHandler(tmpls))
	r.Post("/links", api.LinkCoursesHandler(svc))

	r.Route("/courses/{course}", func(cr chi.Router) {
		cr.Get("/config", api.GetCourseConfigHandler(svc))
		cr.Put("/config", api.SaveCourseConfigHandler(svc))
		cr.Delete("/config", api.DeleteCourseConfigHandler(svc))
		cr.Post("/config/from-template", api.ApplyTemplateHandler(svc, tmpls))

		cr.Post("/overrides", api.UpdateCategoryOverrideHandler(svc))
		cr.Post("/exclusions/toggle", api.ToggleExclusionHandler(svc))
		cr.Post("/exclusions/bulk", api.BulkExcludeHandler(svc))
		cr.Delete("/exclusions", api.ClearExclusionsHandler(svc))
		cr.Post("/setup-seen", api.MarkSetupSeenHandler(svc))

		cr.Get("/links", api.GetCourseLinksHandler(svc))
		cr.Delete("/links/{linked}", api.UnlinkCourseHandler(svc))
		cr.Delete("/links", api.DeleteAllLinksHandler(svc))

		cr.Post("/grades", api.CalculateGradesHandler(svc))
		cr.Post("/grades/what-if", api.WhatIfHandler(svc))
	})

	server := http.Server{Addr: cfg.HTTPAddr, Handler: r}

	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		server.Close()
	}()

	slog.Info("listening", "addr", cfg.HTTPAddr, "driver", cfg.DBDriver)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server closed", "error", err)
		os.Exit(1)
	}
}
