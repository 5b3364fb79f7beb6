package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-gpa-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-gpa-api/internal/middleware"
	"github.com/noah-isme/course-gpa-api/internal/service"
	"github.com/noah-isme/course-gpa-api/pkg/config"
	appErrors "github.com/noah-isme/course-gpa-api/pkg/errors"
	"github.com/noah-isme/course-gpa-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-gpa-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-gpa-api/pkg/middleware/requestid"
	"github.com/noah-isme/course-gpa-api/pkg/response"
)

// Dependencies carries everything the HTTP layer needs.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Courses *handler.CourseHandler
	Reports *handler.ReportHandler
	Metrics *service.MetricsService
	Ready   func() error
	// Extra registers additional routes on the engine, e.g. API docs.
	Extra func(r *gin.Engine)
}

// New builds the gin engine with middleware and all course routes.
func New(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(response.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(corsmiddleware.DefaultOptions(cfg.CORS.AllowedOrigins)))
	if cfg.Metrics.Enabled {
		r.Use(internalmiddleware.Metrics(deps.Metrics))
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.NotFound("route not found: "+c.Request.URL.Path))
	})
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.ErrUnsupported)
	})

	ops := handler.NewMetricsHandler(deps.Metrics, deps.Ready)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", ops.Prometheus)
	}

	base := r.Group(cfg.ContextPath)

	var guard []gin.HandlerFunc
	if cfg.Auth.Enabled {
		guard = append(guard, internalmiddleware.JWT([]byte(cfg.Auth.Secret)))
	}

	courses := base.Group("/courses")
	courses.GET("", deps.Courses.List)
	courses.GET("/:name", deps.Courses.GetByName)
	courses.POST("", append(guard, deps.Courses.Create)...)
	courses.PUT("/:id", append(guard, deps.Courses.Update)...)
	courses.DELETE("/:id", append(guard, deps.Courses.Delete)...)
	if cfg.ResetAllowed() {
		courses.POST("/test/reset", deps.Courses.Reset)
	}

	if cfg.Exports.Enabled && deps.Reports != nil {
		base.GET("/reports/courses", deps.Reports.Courses)
	}

	if deps.Extra != nil {
		deps.Extra(r)
	}

	return r
}
