package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"

	"financas/internal/auth"
	"financas/internal/cache"
	"financas/internal/config"
	"financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/services"
	"financas/internal/storage"
)

const (
	analyticsCacheSize = 500
	analyticsCacheTTL  = 2 * time.Minute
)

// Server is the API server. It owns the middleware stack and the analytics
// caches; everything else is injected.
type Server struct {
	http.Server

	store       storage.Store
	gastos      *services.GastoService
	rendimentos *services.RendimentoService
	reports     *services.ReportService
	tokens      *auth.TokenManager
	google      *auth.GoogleVerifier

	logger       *log.Logger
	isProduction bool

	dashboardCache  *cache.LRUCache[*storage.Dashboard]
	trendsCache     *cache.LRUCache[*storage.Trends]
	categoriesCache *cache.LRUCache[*storage.CategoriesReport]
	cacheManager    *cache.Manager

	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// Deps bundles what NewServer needs.
type Deps struct {
	Config      *config.Config
	Store       storage.Store
	Gastos      *services.GastoService
	Rendimentos *services.RendimentoService
	Reports     *services.ReportService
	Tokens      *auth.TokenManager
	Google      *auth.GoogleVerifier
	Logger      *log.Logger
}

// NewServer wires routes, middleware and caches.
func NewServer(deps Deps) *Server {
	s := &Server{
		store:        deps.Store,
		gastos:       deps.Gastos,
		rendimentos:  deps.Rendimentos,
		reports:      deps.Reports,
		tokens:       deps.Tokens,
		google:       deps.Google,
		logger:       deps.Logger.WithComponent(log.ComponentHTTP),
		isProduction: deps.Config.IsProduction(),

		dashboardCache:  cache.NewLRUCache[*storage.Dashboard](analyticsCacheSize, analyticsCacheTTL),
		trendsCache:     cache.NewLRUCache[*storage.Trends](analyticsCacheSize, analyticsCacheTTL),
		categoriesCache: cache.NewLRUCache[*storage.CategoriesReport](analyticsCacheSize, analyticsCacheTTL),
		cacheManager:    cache.NewManager(),

		limiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector: security.NewDetector(),
	}

	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.Register(s.trendsCache)
	s.cacheManager.Register(s.categoriesCache)
	s.cacheManager.StartCleanup(time.Minute)

	s.Server = http.Server{
		Addr:         ":" + deps.Config.Port,
		Handler:      s.buildHandler(deps.Config),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/google", s.handleGoogleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))
	mux.HandleFunc("PUT /api/auth/profile", s.requireAuth(s.handleUpdateProfile))
	mux.HandleFunc("PUT /api/auth/change-password", s.requireAuth(s.handleChangePassword))

	mux.HandleFunc("GET /api/gastos", s.requireAuth(s.handleListGastos))
	mux.HandleFunc("POST /api/gastos", s.requireAuth(s.handleCreateGasto))
	mux.HandleFunc("GET /api/gastos/stats", s.requireAuth(s.handleGastoStats))
	mux.HandleFunc("GET /api/gastos/search", s.requireAuth(s.handleSearchGastos))
	mux.HandleFunc("GET /api/gastos/period/{mes}/{ano}", s.requireAuth(s.handleGastosByPeriod))
	mux.HandleFunc("GET /api/gastos/category/{categoria}", s.requireAuth(s.handleGastosByCategory))
	mux.HandleFunc("GET /api/gastos/{id}", s.requireAuth(s.handleGetGasto))
	mux.HandleFunc("PUT /api/gastos/{id}", s.requireAuth(s.handleUpdateGasto))
	mux.HandleFunc("DELETE /api/gastos/{id}", s.requireAuth(s.handleDeleteGasto))

	mux.HandleFunc("GET /api/rendimentos", s.requireAuth(s.handleListRendimentos))
	mux.HandleFunc("POST /api/rendimentos", s.requireAuth(s.handleCreateRendimento))
	mux.HandleFunc("GET /api/rendimentos/stats", s.requireAuth(s.handleRendimentoStats))
	mux.HandleFunc("GET /api/rendimentos/search", s.requireAuth(s.handleSearchRendimentos))
	mux.HandleFunc("GET /api/rendimentos/period/{mes}/{ano}", s.requireAuth(s.handleRendimentosByPeriod))
	mux.HandleFunc("GET /api/rendimentos/{id}", s.requireAuth(s.handleGetRendimento))
	mux.HandleFunc("PUT /api/rendimentos/{id}", s.requireAuth(s.handleUpdateRendimento))
	mux.HandleFunc("DELETE /api/rendimentos/{id}", s.requireAuth(s.handleDeleteRendimento))

	mux.HandleFunc("GET /api/analytics/dashboard", s.requireAuth(s.handleDashboard))
	mux.HandleFunc("GET /api/analytics/trends", s.requireAuth(s.handleTrends))
	mux.HandleFunc("GET /api/analytics/categories", s.requireAuth(s.handleCategories))
	mux.HandleFunc("GET /api/insights", s.requireAuth(s.handleInsights))

	mux.HandleFunc("GET /api/users", s.requireAuth(s.handleListUsers))
	mux.HandleFunc("GET /api/users/{id}", s.requireAuth(s.handleGetUser))
	mux.HandleFunc("PUT /api/users/{id}", s.requireAuth(s.handleUpdateUser))
	mux.HandleFunc("DELETE /api/users/{id}", s.requireAuth(s.handleDeactivateUser))

	mux.HandleFunc("GET /api/days-worked", s.requireAuth(s.handleListDaysWorked))
	mux.HandleFunc("PUT /api/days-worked", s.requireAuth(s.handleUpsertDaysWorked))
	mux.HandleFunc("GET /api/fixed-costs", s.requireAuth(s.handleListFixedCosts))
	mux.HandleFunc("PUT /api/fixed-costs", s.requireAuth(s.handleUpsertFixedCost))

	return mux
}

func (s *Server) buildHandler(cfg *config.Config) http.Handler {
	var handler http.Handler = s.routes()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler = corsMiddleware.Handler(handler)

	handler = s.limiter.Middleware(ratelimit.DefaultConfig(), s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeMessage(w, http.StatusTooManyRequests, "demasiados pedidos")
	})(handler)

	handler = s.detectionMiddleware(handler)

	traceMiddleware := trace.NewMiddleware(s.detector.ExtractClientIP)
	handler = traceMiddleware.Middleware(handler)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler = headers.Middleware(handler)

	return handler
}

// detectionMiddleware logs probing attempts without blocking them.
func (s *Server) detectionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Suspicious request detected",
				"method", r.Method,
				"path", r.URL.Path,
				"client_ip", s.detector.ExtractClientIP(r),
				"user_agent", r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// invalidateAnalytics drops every cached analytics payload for a user. Called
// after each write so reads never serve stale aggregates.
func (s *Server) invalidateAnalytics(userID string) {
	prefix := userID + ":"
	s.dashboardCache.DeletePrefix(prefix)
	s.trendsCache.DeletePrefix(prefix)
	s.categoriesCache.DeletePrefix(prefix)
}

// Shutdown stops background goroutines before draining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
	})
	return s.Server.Shutdown(ctx)
}
