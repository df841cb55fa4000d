package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/roboclean/ops-sync/internal/config"
	"github.com/roboclean/ops-sync/internal/docstore"
	v1 "github.com/roboclean/ops-sync/internal/handlers/v1"
	"github.com/roboclean/ops-sync/internal/identity"
	"github.com/roboclean/ops-sync/internal/replicator"
	"github.com/roboclean/ops-sync/internal/service"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/internal/taxonomy"
	"github.com/roboclean/ops-sync/pkg/metrics"
	"github.com/roboclean/ops-sync/pkg/middleware"
	"go.uber.org/zap"
)

const gracefulShutdownTimeout = 5 * time.Second

type Server struct {
	cfg      *config.Config
	store    store.Store
	docs     docstore.Store
	listener net.Listener
}

// New returns a new instance of the ops-sync API server.
func New(cfg *config.Config, store store.Store, docs docstore.Store, listener net.Listener) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		docs:     docs,
		listener: listener,
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	repl := replicator.New(s.docs, s.store,
		replicator.WithPageSize(s.cfg.Service.ReplicationPageSize),
		replicator.WithWorkers(s.cfg.Service.ReplicationWorkers),
	)
	reconciler := identity.NewReconciler(identity.NewHTTPProvider(s.cfg.Service.Auth), s.docs)
	expander := taxonomy.NewExpander(s.docs, s.store)

	handler := v1.NewHandler(
		service.NewReplicationService(repl, s.store),
		service.NewTaxonomyService(expander),
		service.NewIdentityService(reconciler),
	)

	router := chi.NewRouter()

	metricMiddleware := metrics.NewMiddleware("api_server")
	metricMiddleware.MustRegisterDefault()

	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
	)

	router.Route("/api/v1", handler.Routes)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Handler: router}

	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("serving: %s", s.cfg.Service.Address)
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
