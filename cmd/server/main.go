package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillvee/Skillvee-ai-studio/internal/config"
	"github.com/skillvee/Skillvee-ai-studio/internal/gemini"
	"github.com/skillvee/Skillvee-ai-studio/internal/httpserver"
	"github.com/skillvee/Skillvee-ai-studio/internal/recording"
	"github.com/skillvee/Skillvee-ai-studio/internal/rtc"
	"github.com/skillvee/Skillvee-ai-studio/internal/session"
	"github.com/skillvee/Skillvee-ai-studio/internal/storage"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	var caps session.Capabilities
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("gemini client: %v", err)
		}
		caps = session.Capabilities{
			Text:      client,
			Greetings: client,
			Scorer:    client,
			Live:      gemini.LiveDialer{Client: client},
		}
	}

	var uploader storage.Uploader
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		store, err := storage.New(storage.Config{
			URL:            cfg.SupabaseURL,
			ServiceRoleKey: cfg.SupabaseKey,
			Bucket:         cfg.SupabaseBucket,
		})
		if err != nil {
			log.Printf("supabase storage disabled: %v", err)
		} else {
			uploader = store
		}
	}

	registry := session.NewRegistry(func() *session.Session {
		// Each session gets its own push intake: the browser captures, the
		// server owns the recording state machine.
		return session.New(caps, uploader, recording.NewIntake(), cfg.CandidateName)
	})

	srv := httpserver.New(registry, rtc.NewBridge(cfg.ICEServersJSON))

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Echo,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
	registry.CloseAll()
}
