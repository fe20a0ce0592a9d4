package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"healthtrack/internal/infra/config"
	"healthtrack/internal/infra/obs"
)

type Handlers struct {
	Reports        ReportHTTP
	Web            WebHTTP
	Auth           AuthHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter wires middleware and every route. Route groups whose handlers
// are nil are left out.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(obsMW.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition", "Location", obs.RequestIDHeader},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	if h.Web != nil {
		router.SetHTMLTemplate(loadTemplates())
		router.GET("/", h.Web.Index)
		router.POST("/", h.Web.Analyze)
		router.GET("/history", h.Web.History)
		router.GET("/export_csv", h.Web.ExportCSV)
		router.GET("/clear_history", h.Web.ClearHistory)
		router.GET("/delete/:id", h.Web.DeleteReport)
		router.GET("/register", h.Web.RegisterForm)
		router.POST("/register", h.Web.Register)
		router.GET("/login", h.Web.LoginForm)
		router.POST("/login", h.Web.Login)
		router.GET("/logout", h.Web.Logout)
	}

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Reports != nil {
		api.POST("/evaluations", h.Reports.Evaluate)
		api.POST("/reports", h.Reports.Submit)
		api.GET("/reports", h.Reports.List)
		api.DELETE("/reports", h.Reports.Clear)
		api.GET("/reports/export.csv", h.Reports.Export)
		api.POST("/reports/export/archive", h.Reports.Archive)
		api.DELETE("/reports/:id", h.Reports.Delete)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
