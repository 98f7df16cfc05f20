package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"kifudb/internal/adapters"
	"kifudb/internal/bootstrap"
	boardDelivery "kifudb/internal/delivery/board"
	kifuDelivery "kifudb/internal/delivery/kifu"
	ownMiddleware "kifudb/internal/middleware"
	repo "kifudb/internal/repository"
	kifuUsecase "kifudb/internal/usecase/kifu"
)

type mainDeliveryHandler struct {
	kifu  *kifuDelivery.KifuHandler
	board *boardDelivery.BoardHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.mongoAdapter.Close(context.Background())
	defer databaseAdapters.redisAdapter.Close(context.Background())

	kifuRepo := repo.NewKifuRepository(*cfg, logger, databaseAdapters.redisAdapter.GetClient(), databaseAdapters.mongoAdapter.Database)
	if err := kifuRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(*cfg, logger, kifuRepo)
	handlers.Router(r, cfg.IsLocalCors)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go handleShutdown(cancel, srv, logger)

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h.kifu.Routes(r)
	r.Get("/board", h.board.HandleBoard)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Не удалось инициализировать MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Не удалось инициализировать Redis", zap.Error(err))
	}

	log.Info("Адаптеры баз данных инициализированы")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func initializeDeliveryHandlers(
	cfg bootstrap.Config,
	log *zap.SugaredLogger,
	store kifuUsecase.KifuStore,
) *mainDeliveryHandler {
	kifuUC := kifuUsecase.NewKifuUseCase(store, log, cfg.DefaultCharset)

	return &mainDeliveryHandler{
		kifu:  kifuDelivery.NewKifuHandler(cfg, log, kifuUC),
		board: boardDelivery.NewBoardHandler(log),
	}
}

func handleShutdown(cancelFunc context.CancelFunc, srv *http.Server, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
}
