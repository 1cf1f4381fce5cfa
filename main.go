package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"turfreports/internal/auth"
	"turfreports/internal/cache"
	"turfreports/internal/db"
	"turfreports/internal/export"
	"turfreports/internal/ratelimit"
	"turfreports/internal/reports"
)

type App struct {
	Config   *Config
	Log      zerolog.Logger
	DB       *db.Router
	Cache    cache.Store
	Sessions *auth.Manager
	Limiter  *ratelimit.Limiter
	Reports  *reports.Service
	Exports  *export.Service
}

func main() {
	config, err := LoadConfig()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger := NewLogger(config)

	router, err := db.NewRouter(config.AgenciasDSN, config.AppWebDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open databases")
	}
	defer router.Close()

	store := openCacheStore(config, logger)

	sessionStore := sessions.NewFilesystemStore(config.SessionDir, config.SessionSecret)
	sessionStore.MaxLength(8192)
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   config.SessionLifetime * 60,
		HttpOnly: true,
		Secure:   config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	}

	lifetime := time.Duration(config.SessionLifetime) * time.Minute
	creds := auth.NewSQLCredentialStore(router.Agencias())
	sessionManager := auth.NewManager(sessionStore, creds, lifetime, config.Environment == "production", logger)

	limiter := ratelimit.New(config.RateLimit, time.Duration(config.RateWindow)*time.Second)
	limiter.StartCleanupRoutine(time.Minute)

	reportSvc := reports.NewService(router, store, logger)
	exportSvc := export.NewService(reportSvc, config.ExportDir, logger)

	app := &App{
		Config:   config,
		Log:      logger,
		DB:       router,
		Cache:    store,
		Sessions: sessionManager,
		Limiter:  limiter,
		Reports:  reportSvc,
		Exports:  exportSvc,
	}

	r := mux.NewRouter()

	r.Use(app.RecoveryMiddleware)
	r.Use(app.LoggingMiddleware)
	r.Use(app.CORSMiddleware)
	r.Use(app.RateLimitMiddleware)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", app.handleLogin).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", app.AuthMiddleware(app.handleLogout)).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/status", app.AuthMiddleware(app.handleAuthStatus)).Methods("GET", "OPTIONS")
	api.HandleFunc("/auth/verify", app.AuthMiddleware(app.handleAuthStatus)).Methods("GET", "OPTIONS")
	api.HandleFunc("/auth/csrf-token", app.AuthMiddleware(app.handleCSRFToken)).Methods("GET", "OPTIONS")

	api.HandleFunc("/reports/agencies", app.AuthMiddleware(app.handleAgencies)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/hipodromos", app.AuthMiddleware(app.handleHipodromos)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/numeros-carreras", app.AuthMiddleware(app.handleNumerosCarreras)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/lista-tickets", app.AuthMiddleware(app.handleListaTickets)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/informe-por-agencia", app.RequirePermission(auth.PermViewAgencyReports, app.handleInformePorAgencia)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/caballos-retirados", app.RequirePermission(auth.PermViewAllReports, app.handleCaballosRetirados)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/carreras", app.RequirePermission(auth.PermManageRaces, app.handleCarreras)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/resultados-carrera", app.AuthMiddleware(app.handleResultadosCarrera)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/tickets-anulados", app.RequirePermission(auth.PermViewAllReports, app.handleTicketsAnulados)).Methods("GET", "OPTIONS")

	api.HandleFunc("/reports/agencia/ventas-diarias", app.RequirePermission(auth.PermViewOwnReports, app.handleVentasDiariasAgencia)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/agencia/tickets-devoluciones", app.RequirePermission(auth.PermViewRefunds, app.handleTicketsDevolucionesAgencia)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/agencia/sports-carreras", app.RequirePermission(auth.PermViewSportsRaces, app.handleSportsCarrerasAgencia)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/agencia/tickets-anulados", app.RequirePermission(auth.PermViewCancelledTickets, app.handleTicketsAnuladosAgencia)).Methods("GET", "OPTIONS")

	api.HandleFunc("/reports/appweb/por-usuario", app.RequirePermission(auth.PermViewAllReports, app.handlePorUsuario)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/appweb/detalle-usuario/{id:[0-9]+}", app.RequirePermission(auth.PermViewAllReports, app.handleDetalleUsuario)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/appweb/economico", app.RequirePermission(auth.PermViewAllReports, app.handleEconomico)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/appweb/dinero-remanente", app.RequirePermission(auth.PermViewAllReports, app.handleDineroRemanente)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/appweb/apuestas", app.RequirePermission(auth.PermViewAllReports, app.handleApuestas)).Methods("GET", "OPTIONS")
	api.HandleFunc("/reports/appweb/rendimiento-apuesta-carrera", app.RequirePermission(auth.PermViewAllReports, app.handleRendimientoApuestaCarrera)).Methods("GET", "OPTIONS")

	api.HandleFunc("/reports/export", app.AuthMiddleware(app.CSRFMiddleware(app.handleExport))).Methods("POST", "OPTIONS")
	api.HandleFunc("/download/{filename}", app.AuthMiddleware(app.handleDownload)).Methods("GET", "OPTIONS")

	logger.Info().Str("port", config.Port).Str("environment", config.Environment).Msg("Server starting")
	if err := http.ListenAndServe(":"+config.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped")
	}
}

// openCacheStore builds the configured cache backend. Redis failures fall
// back to the file store so reports keep working without it.
func openCacheStore(config *Config, logger zerolog.Logger) cache.Store {
	if config.CacheDriver == "redis" {
		store, err := cache.NewRedisStore(config.RedisAddr)
		if err == nil {
			logger.Info().Str("addr", config.RedisAddr).Msg("Cache backed by redis")
			return store
		}
		logger.Warn().Err(err).Msg("Redis unavailable, falling back to file cache")
	}

	store, err := cache.NewFileStore(config.CacheDir)
	if err != nil {
		logger.Warn().Err(err).Msg("File cache unavailable, caching disabled")
		return nil
	}
	return store
}
