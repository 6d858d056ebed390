package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keimadura-pos/internal/ai"
	"keimadura-pos/internal/apperr"
	"keimadura-pos/internal/auth"
	"keimadura-pos/internal/config"
	"keimadura-pos/internal/database"
	"keimadura-pos/internal/handlers"
	"keimadura-pos/internal/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Exit codes: bad configuration and an unreachable database are told apart.
const (
	exitConfig      = 1
	exitUnreachable = 2
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Invalid configuration: %v", err)
		os.Exit(exitConfig)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		if apperr.Is(err, apperr.KindConnectivity) {
			log.Printf("❌ database unreachable: %v", err)
			os.Exit(exitUnreachable)
		}
		log.Fatalf("Database setup failed: %v", err)
	}

	svc := services.New(db, services.SystemClock(cfg.Location))
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	// --- FEATURE FLAG: Stock assistant ---
	// Only enabled when a Gemini key is configured
	var assistant handlers.Assistant
	if cfg.GeminiAPIKey != "" {
		agent, err := ai.NewAgent(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, svc, services.SystemClock(cfg.Location))
		if err != nil {
			log.Printf("⚠️ WARNING: assistant disabled: %v", err)
		} else {
			defer agent.Close()
			assistant = agent
			log.Printf("🤖 Assistant enabled (%s)", cfg.GeminiModel)
		}
	} else {
		log.Println("🔒 Assistant is DISABLED (no GEMINI_API_KEY).")
	}

	h := handlers.New(cfg, db, svc, tokens, assistant)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handlers.NewRouter(h, cfg.CORSOrigins),
	}

	if err := serve(srv); err != nil {
		log.Fatal(err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Println("failed to close the database on shutdown")
		}
	}
	log.Println("server has been gracefully shutdown")
}

// serve runs srv until SIGINT/SIGTERM, then drains pending requests.
func serve(srv *http.Server) error {
	shutdownCtx, shutdownCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer shutdownCancel()

	errGrp, shutdownCtx := errgroup.WithContext(shutdownCtx)

	errGrp.Go(func() error {
		log.Println("🚀 Server starting on " + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	})

	errGrp.Go(func() error {
		<-shutdownCtx.Done()
		log.Println("hold and wait, server is gracefully shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server failed shutdown gracefully: %w", err)
		}
		return nil
	})

	return errGrp.Wait()
}
