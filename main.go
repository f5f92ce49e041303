package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/example/lembra/internal/ai"
	"github.com/example/lembra/internal/config"
	"github.com/example/lembra/internal/database"
	"github.com/example/lembra/internal/scheduler"
	"github.com/example/lembra/internal/server"
	"github.com/example/lembra/internal/words"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger(cfg)

	if err := database.Connect(cfg.DatabaseURL, cfg.DataDir); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	// The stored key wins; the environment variable is a fallback
	creds := ai.Chain{
		ai.NewFileStore(filepath.Join(cfg.DataDir, "openai_api_key")),
		&ai.EnvStore{Name: "OPENAI_API_KEY"},
	}
	client := ai.NewClient(creds, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	wordsSvc := words.NewService(database.NewInterestingWordRepository(), client)

	sched := scheduler.New(log)
	if err := sched.Start(cfg.WordCountInterval); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	srv := server.New(log, client, creds, wordsSvc)

	go func() {
		log.Infof("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(cfg.HTTPAddr); err != nil {
			log.Infof("server stopped: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Infof("received signal: %v", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}
