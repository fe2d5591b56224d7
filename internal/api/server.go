package api

import (
	"net/http"

	"github.com/darmiel/realmbroker/internal/api/middleware"
	"github.com/darmiel/realmbroker/internal/audit"
	"github.com/darmiel/realmbroker/internal/config"
	"github.com/darmiel/realmbroker/internal/core"
	"github.com/darmiel/realmbroker/internal/service"
	"github.com/darmiel/realmbroker/internal/tasks"
)

type Server struct {
	cfg           config.ServerConfig
	authenticator core.Authenticator
	auditor       core.Auditor
	tokenService  *service.TokenService
	taskManager   *tasks.Manager
	serviceOpts   []service.Option
}

type ServerOption func(s *Server)

// WithScopePolicy restricts the scopes granted at the token endpoint.
func WithScopePolicy(p service.ScopePolicy) ServerOption {
	return func(s *Server) {
		s.serviceOpts = append(s.serviceOpts, service.WithScopePolicy(p))
	}
}

// WithTaskManager exposes the tasks of m to admins.
func WithTaskManager(m *tasks.Manager) ServerOption {
	return func(s *Server) {
		s.taskManager = m
	}
}

func NewServer(
	cfg config.ServerConfig,
	brokers core.TokenBrokerFactory,
	authenticator core.Authenticator,
	auditor core.Auditor,
	opts ...ServerOption,
) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}
	s := &Server{
		cfg:           cfg,
		authenticator: authenticator,
		auditor:       auditor,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tokenService = service.NewTokenService(brokers, auditor, s.serviceOpts...)
	return s
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// client credentials exchange
	mux.HandleFunc("POST "+TokenRoute, s.handleToken)

	// authenticated routes
	authenticated := middleware.Authenticate(s.authenticator)
	mux.Handle("GET "+PrincipalRoute, authenticated(http.HandlerFunc(s.handlePrincipal)))
	mux.Handle("POST "+RefreshTokenRoute, authenticated(http.HandlerFunc(s.handleRefresh)))

	// admin routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET "+RecentAuditsRoute, s.handleRecentAudits)
	adminMux.HandleFunc("GET "+ListTasksRoute, s.handleListTasks)
	adminMux.HandleFunc("POST "+TriggerTaskRoute, s.handleTriggerTask)
	adminMux.HandleFunc("GET "+LogsForTaskRoute, s.handleLogsForTask)
	admin := authenticated(middleware.RequireScope(AdminScope)(adminMux))
	mux.Handle(AuditParent, admin)
	mux.Handle(TaskParent, admin)

	realm := middleware.Realm(s.cfg.RealmHeader, core.RealmContext(s.cfg.DefaultRealm), s.cfg.AllowsRealm)

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(HealthCheckRoute)(
				realm(mux))))
}
