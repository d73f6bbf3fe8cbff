package server

import (
	"context"
	"net/http"
	"time"

	compensationdomain "github.com/ecoverde/compensa/internal/compensation/domain"
	"github.com/ecoverde/compensa/internal/config"
	rulesdomain "github.com/ecoverde/compensa/internal/rules/domain"
	"github.com/ecoverde/compensa/internal/seed"
	speciesdomain "github.com/ecoverde/compensa/internal/species/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewEngine builds the gin engine with the shared middleware stack. CORS
// is wide open: the API serves public reference data and carries no
// credentials.
func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "compensa API is running"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	compensationSvc compensationdomain.Service
	speciesSvc      speciesdomain.Service
	rulesRepo       rulesdomain.Repository
	loader          *seed.Loader
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	CompensationSvc compensationdomain.Service
	SpeciesSvc      speciesdomain.Service
	RulesRepo       rulesdomain.Repository
	Loader          *seed.Loader
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		compensationSvc: p.CompensationSvc,
		speciesSvc:      p.SpeciesSvc,
		rulesRepo:       p.RulesRepo,
		loader:          p.Loader,
	}

	s.registerAPIRoutes()
	s.registerAdminRoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/municipios", s.ListTreeMunicipalities)
	api.GET("/patch_municipios", s.ListPatchMunicipalities)
	api.GET("/app_municipios", s.ListAppMunicipalities)
	api.GET("/species/status", s.SpeciesStatus)
	api.GET("/species/families", s.ListSpeciesFamilies)

	api.POST("/compensacao/lote", s.CalculateTreeBatch)
	api.POST("/compensacao/patch", s.CalculatePatchBatch)
	api.POST("/compensacao/app", s.CalculateAppBatch)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/rules/:kind/reload", s.ReloadRules)
}

func RunHTTP(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
