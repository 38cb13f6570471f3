package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	pgloader "quizdesk/internal/infra/postgres"
	pgmigrations "quizdesk/internal/infra/postgres/migrations"
	infraredis "quizdesk/internal/infra/redis"
	"quizdesk/internal/store"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestQuizSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedBank(t, ctx, pgURL, sampleBank())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgloader.NewBankLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	bankRepo := infraredis.NewBankRepository(redisClient, loader, 5*time.Minute)

	resultLog := store.NewFileStore(filepath.Join(t.TempDir(), "results.csv"))
	service := app.NewQuizService(bankRepo, resultLog, "bank-1", 20)

	session, err := service.StartSession(ctx, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	// Answer both questions correctly and run to completion.
	if err := session.SelectAnswer(1); err != nil {
		t.Fatalf("select q1: %v", err)
	}
	if _, err := session.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := session.SelectAnswer(0); err != nil {
		t.Fatalf("select q2: %v", err)
	}
	prog, err := session.Advance()
	if err != nil {
		t.Fatalf("final advance: %v", err)
	}
	if prog.State != app.StateCompleted {
		t.Fatalf("expected completed, got %s", prog.State)
	}

	outcome, err := service.CompleteAndRecord(session)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if outcome.CorrectCount != 2 || outcome.ScorePercent != 100 {
		t.Fatalf("expected perfect outcome, got %+v", outcome)
	}

	rows, err := resultLog.LoadAll()
	if err != nil {
		t.Fatalf("load results: %v", err)
	}
	if len(rows) != 1 || rows[0].ScorePercent != 100 || rows[0].Email != "alice@example.com" {
		t.Fatalf("unexpected persisted rows: %+v", rows)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedBank(t *testing.T, ctx context.Context, dsn string, bank domain.Bank) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(bank)
	if err != nil {
		t.Fatalf("marshal bank: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO banks (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, bank.ID, string(data)); err != nil {
		t.Fatalf("insert bank: %v", err)
	}
}

func sampleBank() domain.Bank {
	return domain.Bank{
		ID: "bank-1",
		Questions: []domain.Question{
			{
				Text:         "What is 2 + 2?",
				Choices:      []string{"3", "4", "5"},
				CorrectIndex: 1,
			},
			{
				Text:         "Which data structure uses FIFO order?",
				Choices:      []string{"Queue", "Stack"},
				CorrectIndex: 0,
			},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
