package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/boxtrack/boxtrack/internal/auth"
	authdomain "github.com/boxtrack/boxtrack/internal/auth/domain"
	"github.com/boxtrack/boxtrack/internal/auth/session"
	"github.com/boxtrack/boxtrack/internal/boxtype"
	boxdomain "github.com/boxtrack/boxtrack/internal/boxtype/domain"
	"github.com/boxtrack/boxtrack/internal/config"
	"github.com/boxtrack/boxtrack/internal/dashboard"
	dashboarddomain "github.com/boxtrack/boxtrack/internal/dashboard/domain"
	"github.com/boxtrack/boxtrack/internal/insights"
	insightsdomain "github.com/boxtrack/boxtrack/internal/insights/domain"
	"github.com/boxtrack/boxtrack/internal/observability"
	obslogger "github.com/boxtrack/boxtrack/internal/observability/logger"
	obsmetrics "github.com/boxtrack/boxtrack/internal/observability/metrics"
	"github.com/boxtrack/boxtrack/internal/providers"
	"github.com/boxtrack/boxtrack/internal/providers/report"
	"github.com/boxtrack/boxtrack/internal/ratelimit"
	"github.com/boxtrack/boxtrack/internal/usage"
	usagedomain "github.com/boxtrack/boxtrack/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	observability.Module,
	fx.Provide(registerGin),
	auth.Module,
	session.Module,
	boxtype.Module,
	usage.Module,
	insights.Module,
	dashboard.Module,
	providers.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Log:             log,
		Debug:           cfg.Environment != "production",
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
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

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	sessions     *session.Manager
	authsvc      authdomain.Service
	boxSvc       boxdomain.Service
	usageSvc     usagedomain.Service
	insightsSvc  insightsdomain.Service
	dashboardSvc dashboarddomain.Service
	reports      report.Provider
	obsMetrics   *obsmetrics.Metrics
	usageLimiter *ratelimit.UsageRecordLimiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	Sessions     *session.Manager
	Authsvc      authdomain.Service
	BoxSvc       boxdomain.Service
	UsageSvc     usagedomain.Service
	InsightsSvc  insightsdomain.Service
	DashboardSvc dashboarddomain.Service
	Reports      report.Provider
	ObsMetrics   *obsmetrics.Metrics           `optional:"true"`
	UsageLimiter *ratelimit.UsageRecordLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		sessions:     p.Sessions,
		authsvc:      p.Authsvc,
		boxSvc:       p.BoxSvc,
		usageSvc:     p.UsageSvc,
		insightsSvc:  p.InsightsSvc,
		dashboardSvc: p.DashboardSvc,
		reports:      p.Reports,
		obsMetrics:   p.ObsMetrics,
		usageLimiter: p.UsageLimiter,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.Me)
}

func (s *Server) registerAPIRoutes() {
	s.engine.GET("/api", s.APIBanner)

	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Box types --------
	api.GET("/boxes", s.ListBoxTypes)
	api.POST("/boxes", s.CreateBoxType)
	api.GET("/boxes/:id", s.GetBoxTypeByID)
	api.PUT("/boxes/:id", s.UpdateBoxType)
	api.DELETE("/boxes/:id", s.DeleteBoxType)
	api.POST("/boxes/:id/restock", s.RestockBoxType)

	// -------- Usage --------
	api.POST("/usage", s.UsageRateLimit(), s.RecordUsage)
	api.GET("/usage", s.ListUsage)
	api.GET("/usage/trends", s.UsageTrends)

	// -------- Insights --------
	api.GET("/stats", s.GetStats)
	api.GET("/predictions", s.GetPredictions)
	api.GET("/export", s.ExportInventory)
}
