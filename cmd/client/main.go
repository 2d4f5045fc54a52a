package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutor-feedback-client/internal/config"
	"tutor-feedback-client/internal/handlers"
	"tutor-feedback-client/internal/notice"
	"tutor-feedback-client/internal/session"
	"tutor-feedback-client/internal/store"
)

func main() {
	cfg := config.Load()

	tokens, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer tokens.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notices := notice.NewBoard(cfg.NoticeTTL)
	ctrl, err := session.New(ctx, cfg, tokens, notices)
	if err != nil {
		log.Fatalf("Failed to restore session: %v", err)
	}

	handlers.SetConfig(cfg)
	// Parse templates now so a broken template fails at startup
	handlers.InitTemplates()

	port := cfg.Port
	if port == "" {
		port = "3000"
	}
	srv := &http.Server{
		Addr:              "127.0.0.1:" + port,
		Handler:           handlers.Routes(cfg, ctrl, notices),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("WARNING: shutdown: %v", err)
		}
	}()

	log.Printf("Client starting on http://localhost:%s (backend %s, start page %s)", port, cfg.APIBaseURL, ctrl.Page())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed to start: %v", err)
	}
}
