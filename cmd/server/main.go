package main

import (
	"context"
	"log"

	"github.com/prepforge/interview-platform/internal/ai"
	"github.com/prepforge/interview-platform/internal/config"
	"github.com/prepforge/interview-platform/internal/db"
	"github.com/prepforge/interview-platform/internal/email"
	"github.com/prepforge/interview-platform/internal/httpapi"
	"github.com/prepforge/interview-platform/internal/interview"
	"github.com/prepforge/interview-platform/internal/stats"
	"github.com/prepforge/interview-platform/internal/store/rabbitmq"
	"github.com/prepforge/interview-platform/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := db.SeedSubjects(gdb); err != nil {
		log.Fatalf("seed subjects: %v", err)
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rds.Ping(context.Background()); err != nil {
		log.Printf("redis unavailable, rate limiting will fail open: %v", err)
	}

	// stats export is best-effort: without rabbit the API still runs
	var recorder stats.Recorder
	if pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue); err != nil {
		log.Printf("rabbit unavailable, stats export disabled: %v", err)
	} else {
		defer pub.Close()
		recorder = stats.NewQueuePublisher(gdb, pub)
	}

	reg := ai.NewRegistry()
	reg.Register("gemini", func(apiKey string) (ai.Provider, error) {
		if apiKey == "" {
			apiKey = cfg.GeminiAPIKey
		}
		return ai.NewGemini(apiKey, cfg.GeminiModel)
	})
	reg.Register("ollama", func(apiKey string) (ai.Provider, error) {
		return ai.NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	})
	reg.Register("openai", func(apiKey string) (ai.Provider, error) {
		if apiKey == "" {
			apiKey = cfg.OpenAIAPIKey
		}
		return ai.NewOpenAI(cfg.OpenAIBaseURL, apiKey, cfg.OpenAIModel)
	})

	smtp := email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}

	svc := interview.NewService(interview.NewRepo(gdb), reg, recorder, smtp)

	r := httpapi.NewRouter(gdb, cfg, svc, rds)
	log.Printf("server listening on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
