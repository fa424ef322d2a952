package router

import (
	"time"

	"colectas/internal/config"
	"colectas/internal/handler"
	"colectas/internal/middleware"
	"colectas/internal/model"
	"colectas/internal/repository"
	"colectas/internal/service"
	"colectas/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	estacionRepo := repository.NewEstacionRepository(db)
	depositoRepo := repository.NewDepositoRepository(db)
	folioRepo := repository.NewFolioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	estacionSvc := service.NewEstacionService(estacionRepo, usuarioRepo)
	folioSvc := service.NewFolioService(folioRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	depositoSvc := service.NewDepositoService(depositoRepo, estacionRepo, folioSvc, authSvc, dispatcher, rdb, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	estacionH := handler.NewEstacionHandler(estacionSvc)
	foliosH := handler.NewFoliosHandler(folioSvc, authSvc, estacionSvc)
	depositosH := handler.NewDepositosHandler(depositoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// One-time station setup — public until the station exists, 409 after
	r.POST("/v1/setup", estacionH.Setup)
	r.GET("/v1/estacion", estacionH.Obtener)

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.GET("/roster", authH.Roster)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RolOperador, model.RolSupervisor)
	supervisor := middleware.RequireRole(model.RolSupervisor)

	v1 := r.Group("/v1", jwtMW)
	{
		depositos := v1.Group("/depositos")
		{
			depositos.POST("", anyRole, depositosH.Crear)
			depositos.GET("", anyRole, depositosH.Listar)
			depositos.GET("/corte", anyRole, depositosH.Corte)
			depositos.GET("/export", anyRole, depositosH.ExportarCSV)
			depositos.POST("/corte/email", supervisor, depositosH.EnviarCorte)
			depositos.DELETE("/dia", supervisor, depositosH.LimpiarDia)
			depositos.DELETE("/:id", supervisor, depositosH.Anular)
			depositos.POST("/:id/reimprimir", anyRole, depositosH.Reimprimir)
		}

		usuarios := v1.Group("/usuarios", supervisor)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Eliminar)
		}

		folios := v1.Group("/folios", supervisor)
		{
			folios.POST("/reset", foliosH.Reiniciar)
			folios.GET("/bitacora", foliosH.Bitacora)
		}
	}

	return r
}
