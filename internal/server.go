package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/protocolengine/internal/config"
	"github.com/2beens/protocolengine/internal/db"
	"github.com/2beens/protocolengine/internal/middleware"
	"github.com/2beens/protocolengine/internal/protocol"
	protocolmcp "github.com/2beens/protocolengine/internal/protocol/mcp"
	"github.com/2beens/protocolengine/internal/telemetry/metrics"
	"github.com/2beens/protocolengine/internal/telemetry/tracing"
	"github.com/2beens/protocolengine/pkg"
)

const rateLimiterName = "protocol-api"

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	registry    *protocol.Registry
	service     *protocol.Service
	redisClient *redis.Client
	logger      log.FieldLogger

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	Logger                  log.FieldLogger
	VersionInfo             string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	logger := params.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "protocol-engine")
	if err != nil {
		return nil, err
	}

	store, dbPool, err := OpenStore(ctx, params.Config, params.HoneycombTracingEnabled)
	if err != nil {
		otelShutdown()
		return nil, fmt.Errorf("open protocol store: %w", err)
	}

	var extraCollectors []prometheus.Collector
	if dbPool != nil {
		extraCollectors = append(extraCollectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": params.Config.PostgresDBName},
		))
	}
	promRegistry := metrics.SetupPrometheus("protocolengine", versionOrDev(params.VersionInfo), extraCollectors...)
	metricsManager := metrics.NewManager("protocolengine", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	registry, err := protocol.NewRegistry(ctx, store, logger.WithField("component", "registry"), metricsManager)
	if err != nil {
		_ = store.Close()
		otelShutdown()
		return nil, fmt.Errorf("initial protocol load: %w", err)
	}

	s := &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,
		registry:    registry,
		service: protocol.NewService(
			registry,
			logger.WithField("component", "matcher"),
			metricsManager,
		),
		logger: logger,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if params.Config.RateLimitEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		rdb.AddHook(redisotel.NewTracingHook())
		if err := pingRedis(ctx, rdb); err != nil {
			// rate limiter lets requests through while redis is down
			log.Errorf("--> %s", err)
		}
		s.redisClient = rdb
	}

	return s, nil
}

// OpenStore builds the configured protocol store. The pool is returned for the postgres backend only.
func OpenStore(ctx context.Context, cfg *config.Config, tracingEnabled bool) (protocol.Store, *pgxpool.Pool, error) {
	switch cfg.StoreBackend {
	case config.StoreCSV:
		return protocol.NewCSVStore(cfg.ProtocolsCSVPath), nil, nil
	case config.StoreSQLite:
		store, err := protocol.OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.StorePostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			TracingEnabled: tracingEnabled,
		})
		if err != nil {
			return nil, nil, err
		}
		return protocol.NewPsqlStore(dbPool), dbPool, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

func pingRedis(ctx context.Context, rdb *redis.Client) error {
	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	log.Debugf("redis ping: %s", rdbStatus.Val())
	return nil
}

func (s *Server) routerSetup() http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("protocol-router"))

	r.HandleFunc("/", s.handleRoot).Methods("GET").Name("root")

	protocolRouter := r.NewRoute().Subrouter()
	if s.redisClient != nil {
		protocolRouter.Use(middleware.RateLimit(
			redis_rate.NewLimiter(s.redisClient),
			rateLimiterName,
			s.config.RateLimitPerMin,
			s.metricsManager,
		))
	}
	protocol.NewHandler(s.service).SetupRoutes(protocolRouter)

	if s.config.MCPEnabled {
		mcpServer := protocolmcp.NewServer(s.service, s.versionLabel())
		r.PathPrefix("/mcp").Handler(protocolmcp.NewHTTPHandler(mcpServer)).Name("mcp")
		s.logger.Debugln("mcp server mounted at /mcp")
	}

	// all the rest - unhandled paths
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteJSONError(w, "Not found", http.StatusNotFound)
	})

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest(s.logger))
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.DrainAndCloseRequest())

	// preflight requests are answered before routing
	return middleware.Cors(s.config.CorsAllowedOrigins)(r)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.registry.Snapshot()
	pkg.WriteTextResponseOK(w, fmt.Sprintf(
		"protocol engine %s: %d protocols loaded at %s",
		s.versionLabel(),
		snapshot.Len(),
		snapshot.LoadedAt().UTC().Format(time.RFC3339),
	))
}

func (s *Server) versionLabel() string {
	return versionOrDev(s.versionInfo)
}

func versionOrDev(versionInfo string) string {
	if versionInfo == "" {
		return "dev"
	}
	return versionInfo
}

// ReloadProtocols reloads the store into a new snapshot; on failure the current one stays.
func (s *Server) ReloadProtocols(ctx context.Context) error {
	return s.registry.Reload(ctx)
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:           s.routerSetup(),
		Addr:              ipAndPort,
		WriteTimeout:      time.Minute,
		ReadTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{Registry: s.promRegistry},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	if interval := s.config.ReloadInterval(); interval > 0 {
		log.Debugf("reloading protocols every %s", interval)
		go s.registry.ReloadEvery(ctx, interval)
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	// closes the db pool for the postgres backend
	if err := s.registry.Close(); err != nil {
		log.Errorf("failed to close protocol store: %s", err)
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}
