package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/Novip1906/tasks-http/internal/auth"
	"github.com/Novip1906/tasks-http/internal/config"
	"github.com/Novip1906/tasks-http/internal/elasticsearch"
	"github.com/Novip1906/tasks-http/internal/handlers"
	"github.com/Novip1906/tasks-http/internal/kafka"
	"github.com/Novip1906/tasks-http/internal/middleware"
	"github.com/Novip1906/tasks-http/internal/models"
	"github.com/Novip1906/tasks-http/internal/service"
	"github.com/Novip1906/tasks-http/internal/storage"
	"github.com/Novip1906/tasks-http/internal/web"
	"github.com/Novip1906/tasks-http/pkg/logging"
)

type denylistStore interface {
	auth.Denylist
	io.Closer
}

type Server struct {
	cfg          *config.Config
	log          *slog.Logger
	handler      http.Handler
	db           service.TasksStorage
	denylist     denylistStore
	taskProducer *kafka.EventProducer
}

func NewServer(cfg *config.Config, log *slog.Logger) (*Server, error) {
	s := &Server{cfg: cfg, log: log}

	db, err := newTasksStorage(&cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	s.db = db

	if cfg.Redis.Address != "" {
		rdb, err := storage.NewRedisStorage(context.Background(), cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		s.denylist = rdb
	} else {
		s.denylist = storage.NewMemoryDenylist()
	}

	authService, err := auth.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, seedUsers(cfg.Auth.Users), s.denylist, log)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("auth: %w", err)
	}

	var events service.EventSender
	if len(cfg.Kafka.Brokers) > 0 {
		s.taskProducer = kafka.NewEventProducer(&cfg.Kafka)
		events = s.taskProducer
		log.Info("task events enabled", slog.String("topic", cfg.Kafka.EventsTopic))
	}

	var index service.TaskIndexer
	if len(cfg.Elasticsearch.Addresses) > 0 {
		es, err := elasticsearch.NewClient(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index, log)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("elasticsearch: %w", err)
		}
		index = es
	}

	tasksService := service.NewTasksService(log, db, events, index)

	s.handler = newHandler(&cfg.HTTP, log, authService, tasksService)
	return s, nil
}

func newTasksStorage(cfg *config.Storage, log *slog.Logger) (service.TasksStorage, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		p := cfg.DB
		db, err := storage.NewPostgresStorage(p.Host, p.Port, p.User, p.Password, p.DBName, log)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return db, nil
	case config.DriverSQLite:
		db, err := storage.NewSQLiteStorage(cfg.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return db, nil
	case config.DriverMemory, "":
		if cfg.SkipSeed {
			return storage.NewMemoryStorage(), nil
		}
		return storage.NewSeededMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}
}

func seedUsers(users []config.User) []models.User {
	if len(users) == 0 {
		return auth.DefaultUsers()
	}
	seed := make([]models.User, 0, len(users))
	for _, u := range users {
		seed = append(seed, models.User{Id: u.Id, Username: u.Username, PasswordHash: u.PasswordHash})
	}
	return seed
}

func newHandler(cfg *config.HTTP, log *slog.Logger, authService *auth.AuthService, tasksService *service.TasksService) http.Handler {
	authHandler := handlers.NewAuthHandler(authService)
	tasksHandler := handlers.NewTasksHandler(tasksService)
	protect := middleware.Auth(authService)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.NotFound)

	r.HandleFunc("/", web.Index).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(web.Assets()).Methods(http.MethodGet)
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	r.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	r.Handle("/logout", protect(http.HandlerFunc(authHandler.Logout))).Methods(http.MethodPost)

	r.Handle("/tasks", protect(http.HandlerFunc(tasksHandler.List))).Methods(http.MethodGet)
	r.Handle("/tasks", protect(http.HandlerFunc(tasksHandler.Create))).Methods(http.MethodPost)
	r.Handle("/tasks/search", protect(http.HandlerFunc(tasksHandler.Search))).Methods(http.MethodGet)
	r.Handle("/tasks/{id}", protect(http.HandlerFunc(tasksHandler.Get))).Methods(http.MethodGet)
	r.Handle("/tasks/{id}", protect(http.HandlerFunc(tasksHandler.Update))).Methods(http.MethodPut)
	r.Handle("/tasks/{id}", protect(http.HandlerFunc(tasksHandler.Delete))).Methods(http.MethodDelete)

	handler := http.Handler(r)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(log)(handler)
	handler = gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.CORSOrigins),
		gorillaHandlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
		gorillaHandlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}),
		gorillaHandlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(handler)

	return handler
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTP.Address(),
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.HTTP.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", slog.String("address", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) Close() {
	if s.taskProducer != nil {
		if err := s.taskProducer.Close(); err != nil {
			s.log.Error("kafka close error", logging.Err(err))
		}
	}
	if s.denylist != nil {
		if err := s.denylist.Close(); err != nil {
			s.log.Error("denylist close error", logging.Err(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Error("storage close error", logging.Err(err))
		}
	}
}
