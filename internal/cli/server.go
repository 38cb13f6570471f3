package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizdesk/internal/app"
	"quizdesk/internal/config"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/memory"
	pgloader "quizdesk/internal/infra/postgres"
	redisbank "quizdesk/internal/infra/redis"
	"quizdesk/internal/store"
	transport "quizdesk/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz shell server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(builtinBanks())
	if pool != nil {
		loader = pgloader.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var bankRepo app.BankRepository
	if redisClient != nil {
		bankRepo = redisbank.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		bankRepo = memory.NewBankRepository(loader, bankTTL)
	}

	bankID := cfg.Quiz.BankID
	if bankID == "" {
		bankID = "bank-1"
	}
	resultsPath := cfg.Results.Path
	if resultsPath == "" {
		resultsPath = "results.csv"
	}
	resultLog := store.NewFileStore(resultsPath)

	service := app.NewQuizService(bankRepo, resultLog, bankID, cfg.Quiz.SecondsPerQuestion)
	wsHandler := transport.NewWSHandler(service)
	adminHandler := transport.NewAdminHandler(resultLog)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("/admin/results", adminHandler.HandleResults)
	mux.HandleFunc("/admin/results.csv", adminHandler.HandleResultsCSV)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizdesk on :%s (results log: %s)", finalPort, resultsPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// builtinBanks provides the default question set; swap the loader for the
// Postgres-backed one by configuring postgres.url.
func builtinBanks() map[string]domain.Bank {
	return map[string]domain.Bank{
		"bank-1": {
			ID: "bank-1",
			Questions: []domain.Question{
				{
					Text:         "Which data structure uses FIFO order?",
					Choices:      []string{"Stack", "Queue", "Tree", "Graph"},
					CorrectIndex: 1,
				},
				{
					Text:         "Which keyword is used to inherit a class in Java?",
					Choices:      []string{"implements", "extends", "inherits", "uses"},
					CorrectIndex: 1,
				},
				{
					Text:         "What is the time complexity of binary search (sorted array)?",
					Choices:      []string{"O(n)", "O(log n)", "O(n log n)", "O(1)"},
					CorrectIndex: 1,
				},
				{
					Text:         "Which HTML tag is used for the largest heading?",
					Choices:      []string{"<h1>", "<head>", "<header>", "<h6>"},
					CorrectIndex: 0,
				},
				{
					Text:         "Which of these is NOT a primitive type in Java?",
					Choices:      []string{"int", "boolean", "String", "double"},
					CorrectIndex: 2,
				},
			},
		},
	}
}
