package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/Domenick1991/ragbooking/api"
	"github.com/Domenick1991/ragbooking/config"
	"github.com/Domenick1991/ragbooking/internal/bootstrap"
	"github.com/Domenick1991/ragbooking/internal/cache"
	"github.com/Domenick1991/ragbooking/internal/kafka"
	"github.com/Domenick1991/ragbooking/internal/llm"
	"github.com/Domenick1991/ragbooking/internal/logger"
	"github.com/Domenick1991/ragbooking/internal/repository"
	"github.com/Domenick1991/ragbooking/internal/service/booking"
	"github.com/Domenick1991/ragbooking/internal/service/chat"
	"github.com/Domenick1991/ragbooking/internal/service/ingest"
	"github.com/Domenick1991/ragbooking/internal/service/rag"
	"github.com/Domenick1991/ragbooking/internal/vectorstore"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		zlog.Fatal("load booking timezone", zap.String("timezone", cfg.Booking.Timezone), zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	schemaCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout())
	if err := repository.EnsureSchema(schemaCtx, pool); err != nil {
		zlog.Warn("ensure schema", zap.Error(err))
	}
	cancel()

	redisCache := cache.NewRedisCache(cfg.Redis)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		zlog.Warn("redis unreachable, drafts and chat history degrade to empty", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zlog)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		zlog.Warn("kafka unreachable, booking notifications will be dropped", zap.Error(err))
	}

	generator := llm.NewOllamaClient(cfg.LLM.BaseURL, cfg.LLM.Model, llm.WithTimeout(cfg.LLM.Timeout()))
	embedder := llm.NewOllamaEmbedder(cfg.LLM.BaseURL, cfg.LLM.EmbeddingModel, llm.WithTimeout(cfg.LLM.Timeout()))
	store := newVectorStore(ctx, cfg, pool, zlog)

	bookingRepo := repository.NewBookingRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)

	bookingService := booking.NewBookingService(
		booking.NewDraftStore(redisCache, cfg.Booking.DraftTTL(), zlog),
		booking.NewExtractor(generator, cfg.LLM.Timeout(), zlog),
		booking.NewNormalizer(loc),
		bookingRepo,
		zlog,
		booking.WithNotifications(producer, cfg.Kafka.NotificationsTopic),
		booking.WithPersistTimeout(cfg.Database.Timeout()),
	)
	ragService := rag.NewService(embedder, store, generator, redisCache, zlog,
		rag.WithTopK(cfg.RAG.TopK),
		rag.WithHistoryTurns(cfg.RAG.HistoryTurns),
	)
	ingestService := ingest.NewService(embedder, store, documentRepo, zlog)
	chatService := chat.NewService(bookingService, ragService, zlog)

	deps := bootstrap.Dependencies{
		Chat:      chatService,
		Ingest:    ingestService,
		Documents: documentRepo,
		HealthChecks: map[string]api.Check{
			"postgres": pool.Ping,
			"redis":    redisCache.Ping,
			"kafka":    producer.CheckConnection,
		},
	}

	if err := bootstrap.Run(ctx, cfg, zlog, deps); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}

// newVectorStore keeps vectors in Postgres through pgvector and falls back to
// process memory when the extension cannot be enabled.
func newVectorStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, zlog *zap.Logger) vectorstore.Store {
	if cfg.RAG.VectorStore == config.VectorStoreMemory {
		zlog.Info("using in-memory vector store")
		return vectorstore.NewMemory()
	}

	store := vectorstore.NewPGVector(pool)
	schemaCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout())
	defer cancel()
	if err := store.EnsureSchema(schemaCtx); err != nil {
		zlog.Warn("pgvector unavailable, vectors are kept in memory and lost on restart", zap.Error(err))
		return vectorstore.NewMemory()
	}
	return store
}
